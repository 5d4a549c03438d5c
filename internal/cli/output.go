package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case RoomCode:
		fmt.Printf("Room: %s\n", v.Code)
	case Room:
		o.printRoom(v)
	case Board:
		o.printBoard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	UID    string `json:"uid"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Wins   int    `json:"wins"`
}

// RoomCode response type for room create and join
type RoomCode struct {
	Code string `json:"code"`
}

// RoomPlayer response type
type RoomPlayer struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// Turn response type
type Turn struct {
	Phase          string `json:"phase"`
	ActiveUID      string `json:"activeUid"`
	ConfirmingUID  string `json:"confirmingUid,omitempty"`
	RequiredNumber int    `json:"requiredNumber,omitempty"`
}

// Room response type, the public room snapshot
type Room struct {
	RoomCode      string       `json:"roomCode"`
	Mode          string       `json:"mode"`
	Status        string       `json:"status"`
	HostUID       string       `json:"hostUid"`
	Players       []RoomPlayer `json:"players"`
	CurrentNumber *int         `json:"currentNumber"`
	NumbersCalled []int        `json:"numbersCalled"`
	Winner        *string      `json:"winner"`
	Turn          *Turn        `json:"turn,omitempty"`
	Round         int          `json:"round"`
}

// Summary renders the room on one line
func (r Room) Summary() string {
	parts := []string{fmt.Sprintf("%s %s round %d", r.RoomCode, r.Status, r.Round)}
	if r.CurrentNumber != nil {
		parts = append(parts, fmt.Sprintf("current %d", *r.CurrentNumber))
	}
	if r.Turn != nil {
		switch r.Turn.Phase {
		case "awaiting_confirmation":
			parts = append(parts, fmt.Sprintf("%s to confirm %d", r.Turn.ConfirmingUID, r.Turn.RequiredNumber))
		default:
			parts = append(parts, fmt.Sprintf("%s to pick", r.Turn.ActiveUID))
		}
	}
	if r.Winner != nil {
		parts = append(parts, "winner "+*r.Winner)
	}
	return strings.Join(parts, ", ")
}

// Board is a player's private card
type Board struct {
	Numbers    [][]int  `json:"numbers"`
	Marked     [][]bool `json:"marked"`
	FreeCenter bool     `json:"freeCenter"`
	Lines      int      `json:"lines"`
	Progress   string   `json:"progress"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Name, u.UID)
	fmt.Printf("Wins: %d\n", u.Wins)
	fmt.Printf("Points: %d\n", u.Points)
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.RoomCode)
	fmt.Printf("Mode: %s\n", r.Mode)
	fmt.Printf("Status: %s\n", r.Status)
	if r.Round > 0 {
		fmt.Printf("Round: %d\n", r.Round)
	}
	fmt.Printf("Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		hostStr := ""
		if p.UID == r.HostUID {
			hostStr = " [host]"
		}
		fmt.Printf("  - %s (%s)%s\n", p.Name, p.UID, hostStr)
	}

	if len(r.NumbersCalled) > 0 {
		called := make([]string, len(r.NumbersCalled))
		for i, n := range r.NumbersCalled {
			called[i] = strconv.Itoa(n)
		}
		fmt.Printf("Called: %s\n", strings.Join(called, " "))
	}
	if r.Turn != nil {
		fmt.Printf("Turn: %s\n", r.Summary())
	}
	if r.Winner != nil {
		fmt.Printf("\nWinner: %s\n", *r.Winner)
	}
}

func (o *Output) printBoard(b Board) {
	size := len(b.Numbers)
	if size == 0 {
		return
	}
	center := size / 2

	// Print column headers
	fmt.Print("  ")
	for _, h := range "BINGO"[:min(size, 5)] {
		fmt.Printf("  %c ", h)
	}
	fmt.Println()

	// Print top border
	fmt.Print(" +")
	for col := 0; col < size; col++ {
		fmt.Print("----")
	}
	fmt.Println("+")

	// Print rows, marked cells in brackets
	for row := 0; row < size; row++ {
		fmt.Print(" |")
		for col := 0; col < size; col++ {
			marked := row < len(b.Marked) && col < len(b.Marked[row]) && b.Marked[row][col]
			switch {
			case b.FreeCenter && row == center && col == center:
				fmt.Print(" ** ")
			case marked:
				fmt.Printf("[%2d]", b.Numbers[row][col])
			default:
				fmt.Printf(" %2d ", b.Numbers[row][col])
			}
		}
		fmt.Println("|")
	}

	// Print bottom border
	fmt.Print(" +")
	for col := 0; col < size; col++ {
		fmt.Print("----")
	}
	fmt.Println("+")

	if b.Progress != "" {
		fmt.Printf("Lines: %d  %s\n", b.Lines, b.Progress)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Rooms: %d\n", h.Rooms)
}
