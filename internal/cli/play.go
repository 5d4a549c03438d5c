package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// errQuit ends an interactive session
var errQuit = errors.New("quit")

func newPlayCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "play <code>",
		Short: "Join a room and play over WebSocket",
		Long: `Join a room over WebSocket and play interactively.

Commands (one per line):
  <number>   pick, confirm or mark a number
  start      start the round
  restart    start a new round after a win
  claim      claim bingo
  pass       pass your turn (duel)
  quit       leave the room and exit

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUID(); err != nil {
				return err
			}
			if name == "" {
				name = cfg.UID
			}
			return play(args[0], name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the uid)")

	return cmd
}

// wireMessage is the envelope exchanged with the server
type wireMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	State json.RawMessage `json:"state,omitempty"`
}

func play(code, name string) error {
	conn, _, err := websocket.DefaultDialer.Dial(cfg.WebSocketURL("/api/v1/ws"), nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := send(conn, "join_room", map[string]any{"roomCode": code, "uid": cfg.UID, "name": name}); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	readDone := make(chan error, 1)
	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				readDone <- err
				return
			}
			var msg wireMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			printPlayEvent(out, msg)
		}
	}()

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			event, data, err := parseCommand(line)
			if errors.Is(err, errQuit) {
				_ = send(conn, "leave_room", nil)
				return nil
			}
			if err != nil {
				out.PrintError(err)
				continue
			}
			if event == "" {
				continue
			}
			if err := send(conn, event, data); err != nil {
				return err
			}

		case err := <-readDone:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)

		case <-sigCh:
			if cfg.Output != "json" {
				fmt.Println("\nDisconnected")
			}
			return nil
		}
	}
}

func send(conn *websocket.Conn, event string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(wireMessage{Event: event, Data: raw})
}

// parseCommand turns a line of input into an intent. Blank lines yield no event.
func parseCommand(line string) (string, map[string]any, error) {
	line = strings.TrimSpace(strings.ToLower(line))
	switch line {
	case "":
		return "", nil, nil
	case "start":
		return "start_game", nil, nil
	case "restart":
		return "restart_game", nil, nil
	case "claim", "bingo":
		return "claim_win", nil, nil
	case "pass":
		return "switch_turn", nil, nil
	case "quit", "exit", "leave":
		return "", nil, errQuit
	}

	n, err := strconv.Atoi(line)
	if err != nil || n <= 0 {
		return "", nil, fmt.Errorf("unknown command %q", line)
	}
	return "click_cell", map[string]any{"number": n}, nil
}

func printPlayEvent(out *Output, msg wireMessage) {
	if out.format == "json" {
		fmt.Println(string(mustJSON(msg)))
		return
	}

	switch msg.Event {
	case "board":
		var b Board
		if err := json.Unmarshal(msg.Data, &b); err == nil {
			out.Print(b)
		}
	case "error":
		var e APIError
		if err := json.Unmarshal(msg.Data, &e); err == nil {
			fmt.Printf("! %s\n", e.String())
		}
	default:
		var room Room
		if len(msg.State) > 0 && json.Unmarshal(msg.State, &room) == nil {
			fmt.Printf("%s: %s\n", msg.Event, room.Summary())
			return
		}
		fmt.Printf("%s: %s\n", msg.Event, string(msg.Data))
	}
}

func mustJSON(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}
