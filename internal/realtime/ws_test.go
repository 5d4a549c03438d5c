package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bingogame-go/internal/api/apierr"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/testutil"
)

// fakeSessions records intents and echoes a room_state on join
type fakeSessions struct {
	mu    sync.Mutex
	hubs  *HubManager
	calls []string
	conns map[model.UserID]model.ConnID
}

func (f *fakeSessions) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSessions) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// current rejects intents from a connection the player has since replaced
func (f *fakeSessions) current(uid model.UserID, conn model.ConnID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if bound, ok := f.conns[uid]; ok && bound != conn {
		return model.ErrStaleConnection
	}
	return nil
}

func (f *fakeSessions) Join(_ context.Context, code string, uid model.UserID, _ string, conn model.ConnID) (model.RoomSnapshot, error) {
	if uid == "" {
		return model.RoomSnapshot{}, model.ErrInvalidUser
	}
	f.record("join:" + code + ":" + string(uid))
	f.mu.Lock()
	if f.conns == nil {
		f.conns = make(map[model.UserID]model.ConnID)
	}
	f.conns[uid] = conn
	f.mu.Unlock()
	snap := model.RoomSnapshot{
		RoomCode: model.RoomCode(code),
		Status:   model.RoomStatusWaiting,
		Players:  []model.PlayerView{{UID: uid}},
	}
	f.hubs.Publish([]model.Event{{Type: model.EventRoomState, RoomCode: model.RoomCode(code), State: &snap}})
	return snap, nil
}

func (f *fakeSessions) Start(_ context.Context, code string, _ model.UserID, _ model.ConnID) error {
	f.record("start:" + code)
	return model.ErrInsufficientPlayers
}

func (f *fakeSessions) Restart(_ context.Context, code string, _ model.UserID, _ model.ConnID) error {
	f.record("restart:" + code)
	return nil
}

func (f *fakeSessions) ClickCell(_ context.Context, code string, _ model.UserID, _ model.ConnID, n int) error {
	f.record("click:" + code)
	if n <= 0 {
		return model.ErrInvalidMove
	}
	return nil
}

func (f *fakeSessions) ClaimWin(_ context.Context, code string, uid model.UserID, conn model.ConnID) error {
	f.record("claim:" + code)
	return f.current(uid, conn)
}

func (f *fakeSessions) PassTurn(_ context.Context, code string, _ model.UserID, _ model.ConnID) error {
	f.record("pass:" + code)
	return nil
}

func (f *fakeSessions) Signal(_ context.Context, code string, _ model.UserID, conn model.ConnID, data json.RawMessage) error {
	f.record("signal:" + code)
	f.hubs.Publish([]model.Event{{
		Type:     model.EventSignal,
		RoomCode: model.RoomCode(code),
		Except:   conn,
		Payload:  model.SignalPayload{Data: data},
	}})
	return nil
}

func (f *fakeSessions) Leave(_ context.Context, code string, uid model.UserID, _ model.ConnID) error {
	f.record("leave:" + code + ":" + string(uid))
	return nil
}

type WSTestSuite struct {
	suite.Suite
	hubs     *HubManager
	sessions *fakeSessions
	server   *httptest.Server
	cfg      WSConfig
}

func TestWSSuite(t *testing.T) {
	suite.Run(t, new(WSTestSuite))
}

func (s *WSTestSuite) SetupTest() {
	s.hubs = NewHubManager(testutil.NopLogger())
	s.sessions = &fakeSessions{hubs: s.hubs}
	s.cfg = DefaultWSConfig()
	s.startServer()
}

func (s *WSTestSuite) startServer() {
	if s.server != nil {
		s.server.Close()
	}
	s.server = httptest.NewServer(NewWSHandler(s.sessions, s.hubs, s.cfg, testutil.NopLogger()))
}

func (s *WSTestSuite) TearDownTest() {
	s.server.Close()
	s.hubs.CloseAll()
}

func (s *WSTestSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = ws.Close() })
	return ws
}

func (s *WSTestSuite) send(ws *websocket.Conn, event string, data any) {
	raw, err := json.Marshal(data)
	s.Require().NoError(err)
	s.Require().NoError(ws.WriteJSON(Inbound{Event: event, Data: raw}))
}

func (s *WSTestSuite) read(ws *websocket.Conn) map[string]any {
	s.Require().NoError(ws.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var msg map[string]any
	s.Require().NoError(ws.ReadJSON(&msg))
	return msg
}

func (s *WSTestSuite) errorCode(msg map[string]any) string {
	s.Require().Equal(string(model.EventError), msg["event"])
	data, ok := msg["data"].(map[string]any)
	s.Require().True(ok)
	code, _ := data["code"].(string)
	return code
}

// readError skips room broadcasts until the next error event
func (s *WSTestSuite) readError(ws *websocket.Conn) string {
	for {
		msg := s.read(ws)
		if msg["event"] == string(model.EventRoomState) {
			continue
		}
		return s.errorCode(msg)
	}
}

func (s *WSTestSuite) join(ws *websocket.Conn, code, uid string) {
	s.send(ws, IntentJoinRoom, IntentData{RoomCode: code, UID: model.UserID(uid), Name: uid})
	msg := s.read(ws)
	s.Require().Equal(string(model.EventRoomState), msg["event"])
}

func (s *WSTestSuite) TestJoin_ReceivesRoomState() {
	ws := s.dial()

	s.send(ws, IntentJoinRoom, IntentData{RoomCode: "abcd", UID: "u1", Name: "Alice"})
	msg := s.read(ws)

	s.Equal(string(model.EventRoomState), msg["event"])
	s.Equal("ABCD", msg["room"])
	state, ok := msg["state"].(map[string]any)
	s.Require().True(ok)
	s.Equal("waiting", state["status"])
	s.Contains(s.sessions.Calls(), "join:ABCD:u1")
}

func (s *WSTestSuite) TestJoin_InvalidCode() {
	ws := s.dial()

	s.send(ws, IntentJoinRoom, IntentData{RoomCode: "a!", UID: "u1"})

	s.Equal(apierr.CodeInvalidRoomCode, s.errorCode(s.read(ws)))
}

func (s *WSTestSuite) TestJoin_FailureUnsubscribes() {
	ws := s.dial()

	s.send(ws, IntentJoinRoom, IntentData{RoomCode: "ABCD"})

	s.Equal(apierr.CodeInvalidUser, s.errorCode(s.read(ws)))
	hub := s.hubs.GetHub("ABCD")
	s.Require().NotNil(hub)
	s.Eventually(func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func (s *WSTestSuite) TestJoin_SecondRoomRejected() {
	ws := s.dial()
	s.join(ws, "ABCD", "u1")

	s.send(ws, IntentJoinRoom, IntentData{RoomCode: "WXYZ", UID: "u1"})

	s.Equal(apierr.CodeAlreadyInRoom, s.errorCode(s.read(ws)))
}

func (s *WSTestSuite) TestIntentBeforeJoin() {
	ws := s.dial()

	s.send(ws, IntentClickCell, IntentData{Number: 3})

	s.Equal(apierr.CodeNotInRoom, s.errorCode(s.read(ws)))
}

func (s *WSTestSuite) TestUnknownIntent() {
	ws := s.dial()
	s.join(ws, "ABCD", "u1")

	s.send(ws, "launch_rockets", nil)

	s.Equal(apierr.CodeInvalidRequest, s.errorCode(s.read(ws)))
}

func (s *WSTestSuite) TestMalformedMessage() {
	ws := s.dial()

	s.Require().NoError(ws.WriteMessage(websocket.TextMessage, []byte("{not json")))

	s.Equal(apierr.CodeInvalidRequest, s.errorCode(s.read(ws)))
}

func (s *WSTestSuite) TestRejectedMoveIsSilent() {
	ws := s.dial()
	s.join(ws, "ABCD", "u1")

	// the invalid move produces no reply, so the next message is the start failure
	s.send(ws, IntentClickCell, IntentData{Number: 0})
	s.send(ws, IntentStartGame, nil)

	s.Equal(apierr.CodeInsufficientPlayers, s.errorCode(s.read(ws)))
	s.Equal([]string{"join:ABCD:u1", "click:ABCD", "start:ABCD"}, s.sessions.Calls())
}

func (s *WSTestSuite) TestAliasesRouteToSameOperation() {
	ws := s.dial()
	s.join(ws, "ABCD", "u1")

	s.send(ws, IntentNumberSelected, IntentData{Number: 4})
	s.send(ws, IntentBingoClaimed, nil)
	s.send(ws, IntentSwitchTurn, nil)
	s.send(ws, IntentRestartGame, nil)

	s.Eventually(func() bool { return len(s.sessions.Calls()) == 5 }, time.Second, 10*time.Millisecond)
	s.Equal([]string{"join:ABCD:u1", "click:ABCD", "claim:ABCD", "pass:ABCD", "restart:ABCD"}, s.sessions.Calls())
}

func (s *WSTestSuite) TestSignalSkipsSender() {
	alice := s.dial()
	bob := s.dial()
	s.join(alice, "ABCD", "alice")
	s.join(bob, "ABCD", "bob")
	// alice also sees bob's join
	s.Equal(string(model.EventRoomState), s.read(alice)["event"])

	s.send(alice, IntentSignal, IntentData{Payload: json.RawMessage(`{"sdp":"offer"}`)})

	msg := s.read(bob)
	s.Equal(string(model.EventSignal), msg["event"])

	s.Require().NoError(alice.SetReadDeadline(time.Now().Add(100 * time.Millisecond)))
	_, _, err := alice.ReadMessage()
	s.Error(err)
}

func (s *WSTestSuite) TestLeaveRoomUnbinds() {
	ws := s.dial()
	s.join(ws, "ABCD", "u1")

	s.send(ws, IntentLeaveRoom, nil)
	s.send(ws, IntentStartGame, nil)

	s.Equal(apierr.CodeNotInRoom, s.errorCode(s.read(ws)))
	s.Contains(s.sessions.Calls(), "leave:ABCD:u1")
}

func (s *WSTestSuite) TestReplacedConnectionLosesRoom() {
	old := s.dial()
	fresh := s.dial()
	s.join(old, "ABCD", "u1")
	s.join(fresh, "ABCD", "u1")

	s.send(old, IntentClaimWin, nil)
	s.Equal(apierr.CodeStaleConnection, s.readError(old))

	// the rejected socket is no longer bound to the room
	s.send(old, IntentStartGame, nil)
	s.Equal(apierr.CodeNotInRoom, s.readError(old))
	hub := s.hubs.GetHub("ABCD")
	s.Require().NotNil(hub)
	s.Eventually(func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	s.send(fresh, IntentClaimWin, nil)
	s.Eventually(func() bool {
		claims := 0
		for _, c := range s.sessions.Calls() {
			if c == "claim:ABCD" {
				claims++
			}
		}
		return claims == 2
	}, time.Second, 10*time.Millisecond)
}

func (s *WSTestSuite) TestDisconnectLeavesRoom() {
	ws := s.dial()
	s.join(ws, "ABCD", "u1")

	s.Require().NoError(ws.Close())

	s.Eventually(func() bool {
		for _, c := range s.sessions.Calls() {
			if c == "leave:ABCD:u1" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *WSTestSuite) TestRateLimited() {
	s.cfg = WSConfig{IntentsPerSecond: 0.001, IntentBurst: 1}
	s.startServer()
	ws := s.dial()

	s.send(ws, IntentStartGame, nil)
	s.send(ws, IntentStartGame, nil)

	s.Equal(apierr.CodeNotInRoom, s.errorCode(s.read(ws)))
	s.Equal(apierr.CodeRateLimited, s.errorCode(s.read(ws)))
}
