package model

import "time"

// PlayerView is the public view of a player
type PlayerView struct {
	UID  UserID `json:"uid"`
	Name string `json:"name"`
}

// TurnView is the public view of a duel turn
type TurnView struct {
	Phase          TurnPhase  `json:"phase"`
	ActiveUID      UserID     `json:"activeUid"`
	ConfirmingUID  UserID     `json:"confirmingUid,omitempty"`
	RequiredNumber int        `json:"requiredNumber,omitempty"`
	NextTurnUID    UserID     `json:"nextTurnUid"`
	Deadline       *time.Time `json:"deadline,omitempty"`
}

// RoomSnapshot is an immutable copy of the public room state
type RoomSnapshot struct {
	RoomCode      RoomCode     `json:"roomCode"`
	Mode          GameMode     `json:"mode"`
	Status        RoomStatus   `json:"status"`
	HostUID       UserID       `json:"hostUid,omitempty"`
	Players       []PlayerView `json:"players"`
	CurrentNumber *int         `json:"currentNumber"`
	NumbersCalled []int        `json:"numbersCalled"`
	Winner        *UserID      `json:"winner"`
	Turn          *TurnView    `json:"turn,omitempty"`
	Round         int          `json:"round"`
	WinThreshold  int          `json:"winThreshold"`
}

// PlayerViews returns the public view of the room's players in join order
func (r *Room) PlayerViews() []PlayerView {
	views := make([]PlayerView, len(r.Players))
	for i, p := range r.Players {
		views[i] = PlayerView{UID: p.UserID, Name: p.DisplayName}
	}
	return views
}

// Snapshot returns a copy of the public room state. Boards are never included.
func (r *Room) Snapshot() RoomSnapshot {
	snap := RoomSnapshot{
		RoomCode:      r.Code,
		Mode:          r.Config.Mode,
		Status:        r.Status,
		HostUID:       r.HostID,
		Players:       r.PlayerViews(),
		NumbersCalled: append([]int{}, r.Called...),
		Round:         r.Round,
		WinThreshold:  r.Config.WinThreshold,
	}
	if r.CurrentNumber > 0 {
		n := r.CurrentNumber
		snap.CurrentNumber = &n
	}
	if r.WinnerID != "" {
		w := r.WinnerID
		snap.Winner = &w
	}
	if r.Turn != nil {
		view := &TurnView{
			Phase:          r.Turn.Phase,
			ActiveUID:      r.Turn.ActiveID,
			ConfirmingUID:  r.Turn.ConfirmingID,
			RequiredNumber: r.Turn.RequiredNumber,
			NextTurnUID:    r.Turn.Owner(),
		}
		if !r.Turn.Deadline.IsZero() {
			d := r.Turn.Deadline
			view.Deadline = &d
		}
		snap.Turn = view
	}
	return snap
}
