package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mcoot/bingogame-go/internal/api/apierr"
	"github.com/mcoot/bingogame-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Attempts to join a hub that the janitor closed underneath us
	registerAttempts = 3
)

// errUnknownIntent is reported for events the server does not understand
var errUnknownIntent = apierr.NewInvalidRequestError("unknown event")

// Sessions is the room state machine driven by WebSocket intents
type Sessions interface {
	Join(ctx context.Context, code string, uid model.UserID, name string, conn model.ConnID) (model.RoomSnapshot, error)
	Start(ctx context.Context, code string, uid model.UserID, conn model.ConnID) error
	Restart(ctx context.Context, code string, uid model.UserID, conn model.ConnID) error
	ClickCell(ctx context.Context, code string, uid model.UserID, conn model.ConnID, n int) error
	ClaimWin(ctx context.Context, code string, uid model.UserID, conn model.ConnID) error
	PassTurn(ctx context.Context, code string, uid model.UserID, conn model.ConnID) error
	Signal(ctx context.Context, code string, uid model.UserID, conn model.ConnID, data json.RawMessage) error
	Leave(ctx context.Context, code string, uid model.UserID, conn model.ConnID) error
}

// WSConfig holds WebSocket transport settings
type WSConfig struct {
	// IntentsPerSecond is the sustained inbound rate per connection
	IntentsPerSecond float64
	// IntentBurst is how many intents may arrive back to back
	IntentBurst int
}

// DefaultWSConfig returns sensible defaults for the WebSocket transport
func DefaultWSConfig() WSConfig {
	return WSConfig{
		IntentsPerSecond: 10,
		IntentBurst:      20,
	}
}

// WSHandler upgrades requests to WebSocket player connections
type WSHandler struct {
	upgrader websocket.Upgrader
	sessions Sessions
	hubs     *HubManager
	cfg      WSConfig
	logger   *slog.Logger
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(sessions Sessions, hubs *HubManager, cfg WSConfig, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are served from other origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: sessions,
		hubs:     hubs,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP upgrades the connection and runs it until the peer goes away
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	conn := &Conn{
		id:       model.ConnID(uuid.NewString()),
		ws:       ws,
		handler:  h,
		limiter:  rate.NewLimiter(rate.Limit(h.cfg.IntentsPerSecond), h.cfg.IntentBurst),
		outbound: make(chan []byte, sendBufferSize),
		stop:     make(chan struct{}),
	}
	conn.client = &Client{
		connID:      conn.id,
		format:      FormatJSON,
		send:        conn.outbound,
		connectedAt: time.Now(),
	}
	conn.logger = h.logger.With(slog.String("conn_id", string(conn.id)))
	conn.logger.Info("websocket connected")

	go conn.writePump()
	conn.readPump()
}

// Conn is one player's WebSocket connection. It binds to at most one room.
type Conn struct {
	id       model.ConnID
	ws       *websocket.Conn
	handler  *WSHandler
	limiter  *rate.Limiter
	logger   *slog.Logger
	client   *Client
	outbound chan []byte
	stop     chan struct{}
	stopOnce sync.Once

	// Binding, only touched by the read pump
	room model.RoomCode
	uid  model.UserID
	hub  *Hub
}

// readPump handles inbound messages sequentially until the socket closes
func (c *Conn) readPump() {
	defer func() {
		c.disconnect()
		c.stopOnce.Do(func() { close(c.stop) })
		_ = c.ws.Close()
		c.logger.Info("websocket disconnected")
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		if !c.limiter.Allow() {
			c.sendError(apierr.NewRateLimitedError())
			continue
		}

		var in Inbound
		if err := json.Unmarshal(message, &in); err != nil {
			c.sendError(apierr.NewInvalidRequestError("malformed message"))
			continue
		}

		if err := c.dispatch(context.Background(), in); err != nil {
			// The player reconnected elsewhere; this socket no longer speaks for them
			if errors.Is(err, model.ErrStaleConnection) {
				c.unbind()
			}
			c.handleError(in.Event, err)
		}
	}
}

// writePump drains the outbound channel and keeps the connection alive
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case message := <-c.outbound:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("websocket write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.stop:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Conn) dispatch(ctx context.Context, in Inbound) error {
	var data IntentData
	if len(in.Data) > 0 {
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return apierr.NewInvalidRequestError("malformed data")
		}
	}

	sessions := c.handler.sessions

	if in.Event == IntentJoinRoom {
		return c.join(ctx, data)
	}

	if c.room == "" {
		return model.ErrNotInRoom
	}
	room := string(c.room)

	switch in.Event {
	case IntentStartGame:
		return sessions.Start(ctx, room, c.uid, c.id)
	case IntentRestartGame:
		return sessions.Restart(ctx, room, c.uid, c.id)
	case IntentClickCell, IntentNumberSelected:
		return sessions.ClickCell(ctx, room, c.uid, c.id, data.Number)
	case IntentClaimWin, IntentBingoClaimed:
		return sessions.ClaimWin(ctx, room, c.uid, c.id)
	case IntentSwitchTurn:
		return sessions.PassTurn(ctx, room, c.uid, c.id)
	case IntentSignal:
		return sessions.Signal(ctx, room, c.uid, c.id, data.Payload)
	case IntentLeaveRoom:
		err := sessions.Leave(ctx, room, c.uid, c.id)
		c.unbind()
		return err
	default:
		return errUnknownIntent
	}
}

// join binds the connection to a room. The client is subscribed to the
// room's hub before the join is applied so it sees its own room_state.
func (c *Conn) join(ctx context.Context, data IntentData) error {
	code, err := model.NormalizeRoomCode(data.RoomCode)
	if err != nil {
		return err
	}
	if c.room != "" && (c.room != code || c.uid != data.UID) {
		return model.ErrAlreadyInRoom
	}

	if c.hub == nil {
		if err := c.subscribe(code); err != nil {
			return err
		}
	}

	if _, err := c.handler.sessions.Join(ctx, string(code), data.UID, data.Name, c.id); err != nil {
		if c.room == "" {
			c.hub.Unregister(c.client)
			c.hub = nil
		}
		return err
	}

	c.room = code
	c.uid = data.UID
	c.logger.Info("joined room",
		slog.String("room_code", string(code)),
		slog.String("uid", string(data.UID)))
	return nil
}

func (c *Conn) subscribe(code model.RoomCode) error {
	for i := 0; i < registerAttempts; i++ {
		hub := c.handler.hubs.GetOrCreateHub(code)
		if hub.Register(c.client) {
			c.hub = hub
			return nil
		}
	}
	return errors.New("could not subscribe to room")
}

func (c *Conn) unbind() {
	if c.hub != nil {
		c.hub.Unregister(c.client)
	}
	c.hub = nil
	c.room = ""
	c.uid = ""
}

// disconnect leaves the bound room when the socket closes
func (c *Conn) disconnect() {
	if c.room == "" {
		return
	}
	err := c.handler.sessions.Leave(context.Background(), string(c.room), c.uid, c.id)
	if err != nil && !errors.Is(err, model.ErrRoomNotFound) && !errors.Is(err, model.ErrNotInRoom) {
		c.logger.Warn("leave on disconnect failed", slog.String("error", err.Error()))
	}
	c.unbind()
}

// handleError drops benign rejections and reports everything else privately
func (c *Conn) handleError(event string, err error) {
	if errors.Is(err, model.ErrInvalidMove) || errors.Is(err, model.ErrDuplicateClaim) {
		c.logger.Debug("intent rejected",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}
	c.logger.Info("intent failed",
		slog.String("event", event),
		slog.String("error", err.Error()))
	c.sendError(err)
}

// sendError writes a private error event straight to this connection
func (c *Conn) sendError(err error) {
	apiErr := apierr.Describe(err)
	payload, encErr := Encode(model.Event{
		Type:      model.EventError,
		RoomCode:  c.room,
		Timestamp: time.Now(),
		To:        c.id,
		Payload:   model.ErrorPayload{Code: apiErr.Code, Message: apiErr.Message},
	})
	if encErr != nil {
		return
	}
	select {
	case c.outbound <- payload:
	default:
		c.logger.Warn("error event dropped - buffer full")
	}
}
