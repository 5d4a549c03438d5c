package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "number_called",
			data:      `{"number":7}`,
			expected:  "event: number_called\ndata: {\"number\":7}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "room_state",
			data:      "{\n  \"a\": 1\n}",
			expected:  "event: room_state\ndata: {\ndata:   \"a\": 1\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func decode(t *testing.T, raw []byte) Outbound {
	t.Helper()
	var out Outbound
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func newTestManager(t *testing.T) *HubManager {
	m := NewHubManager(testutil.NopLogger())
	t.Cleanup(m.CloseAll)
	return m
}

func TestPublish_FansOutPublicEvents(t *testing.T) {
	m := newTestManager(t)
	hub := m.GetOrCreateHub("ABCD")
	a := NewClient("a", FormatJSON, false)
	b := NewClient("b", FormatJSON, false)
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))

	snap := model.RoomSnapshot{RoomCode: "ABCD", Status: model.RoomStatusPlaying}
	m.Publish([]model.Event{{
		Type:     model.EventNumberCalled,
		RoomCode: "ABCD",
		Payload:  model.NumberCalledPayload{Number: 42},
		State:    &snap,
	}})

	for _, c := range []*Client{a, b} {
		out := decode(t, receive(t, c))
		assert.Equal(t, model.EventNumberCalled, out.Event)
		require.NotNil(t, out.State)
		assert.Equal(t, model.RoomStatusPlaying, out.State.Status)
	}
}

func TestPublish_PrivateEventsReachOnlyTarget(t *testing.T) {
	m := newTestManager(t)
	hub := m.GetOrCreateHub("ABCD")
	a := NewClient("a", FormatJSON, false)
	b := NewClient("b", FormatJSON, false)
	spectator := NewClient("a", FormatSSE, true)
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))
	require.True(t, hub.Register(spectator))

	m.Publish([]model.Event{
		{Type: model.EventBoard, RoomCode: "ABCD", To: "a", Payload: model.BoardPayload{}},
		{Type: model.EventBoard, RoomCode: "ABCD", Payload: model.BoardPayload{}},
	})

	assert.Equal(t, model.EventBoard, decode(t, receive(t, a)).Event)
	assertNothing(t, a)
	assertNothing(t, b)
	assertNothing(t, spectator)
}

func TestPublish_ExceptSkipsSender(t *testing.T) {
	m := newTestManager(t)
	hub := m.GetOrCreateHub("ABCD")
	a := NewClient("a", FormatJSON, false)
	b := NewClient("b", FormatJSON, false)
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))

	m.Publish([]model.Event{{Type: model.EventSignal, RoomCode: "ABCD", Except: "a"}})

	assert.Equal(t, model.EventSignal, decode(t, receive(t, b)).Event)
	assertNothing(t, a)
}

func TestPublish_SSEClientsGetEventStreamFrames(t *testing.T) {
	m := newTestManager(t)
	hub := m.GetOrCreateHub("ABCD")
	spectator := NewClient("s", FormatSSE, true)
	require.True(t, hub.Register(spectator))

	m.Publish([]model.Event{{Type: model.EventGameOver, RoomCode: "ABCD"}})

	frame := string(receive(t, spectator))
	assert.Contains(t, frame, "event: game_over\ndata: {")
}

func TestPublish_FullBufferDropsWithoutBlocking(t *testing.T) {
	m := newTestManager(t)
	hub := m.GetOrCreateHub("ABCD")
	slow := &Client{connID: "slow", send: make(chan []byte, 1)}
	marker := NewClient("marker", FormatJSON, false)
	require.True(t, hub.Register(slow))
	require.True(t, hub.Register(marker))

	m.Publish([]model.Event{
		{Type: model.EventNumberCalled, RoomCode: "ABCD", Except: "marker"},
		{Type: model.EventNumberCalled, RoomCode: "ABCD", Except: "marker"},
		{Type: model.EventNumberCalled, RoomCode: "ABCD", Except: "marker"},
		{Type: model.EventError, RoomCode: "ABCD", To: "marker"},
	})

	// the marker's event is fanned out after the three calls
	assert.Equal(t, model.EventError, decode(t, receive(t, marker)).Event)
	receive(t, slow)
	assertNothing(t, slow)
}

func TestPublish_NoHubIsNoop(t *testing.T) {
	m := newTestManager(t)

	m.Publish([]model.Event{{Type: model.EventRoomState, RoomCode: "NONE"}})

	assert.Nil(t, m.GetHub("NONE"))
}

func TestCloseRoom_ClosesHub(t *testing.T) {
	m := newTestManager(t)
	hub := m.GetOrCreateHub("ABCD")

	m.CloseRoom("ABCD")

	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub not closed")
	}
	assert.False(t, hub.Register(NewClient("late", FormatJSON, false)))
	assert.Nil(t, m.GetHub("ABCD"))
}

func TestCleanupEmptyHubs(t *testing.T) {
	m := newTestManager(t)
	_ = m.GetOrCreateHub("EMPT")
	busy := m.GetOrCreateHub("BUSY")
	require.True(t, busy.Register(NewClient("a", FormatJSON, false)))

	require.Eventually(t, func() bool { return busy.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	m.CleanupEmptyHubs()

	assert.Nil(t, m.GetHub("EMPT"))
	assert.NotNil(t, m.GetHub("BUSY"))
}
