package game

import (
	"github.com/pkg/errors"

	"github.com/luxquant/gomoku/internal/board"
)

var (
	ErrNotRunning    = errors.New("game not running")
	ErrNotHumanTurn  = errors.New("not human turn")
	ErrIllegalMove   = errors.New("illegal move")
	ErrNothingToUndo = errors.New("nothing to undo")
)

type Status int

const (
	StatusNotStarted Status = iota
	StatusRunning
	StatusBlackWon
	StatusWhiteWon
	StatusDraw
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusBlackWon:
		return "black_won"
	case StatusWhiteWon:
		return "white_won"
	case StatusDraw:
		return "draw"
	default:
		return "not_started"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{StatusNotStarted, StatusRunning, StatusBlackWon, StatusWhiteWon, StatusDraw} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return errors.Errorf("unknown status %q", text)
}

func (s Status) Over() bool {
	return s == StatusBlackWon || s == StatusWhiteWon || s == StatusDraw
}

func wonBy(role board.Role) Status {
	if role == board.Black {
		return StatusBlackWon
	}
	return StatusWhiteWon
}

// Snapshot is a copy of the session state that is safe to hand to other
// goroutines.
type Snapshot struct {
	Mode      string       `json:"mode"`
	Status    Status       `json:"status"`
	ToMove    string       `json:"to_move"`
	Round     int          `json:"round"`
	BoardSize int          `json:"board_size"`
	Rows      []string     `json:"rows"`
	LastMove  *board.Point `json:"last_move,omitempty"`
	History   []MoveView   `json:"history"`
	Players   [2]string    `json:"players"`
	Message   string       `json:"message,omitempty"`
}

type EventKind string

const (
	EventStart    EventKind = "start"
	EventMove     EventKind = "move"
	EventUndo     EventKind = "undo"
	EventGameOver EventKind = "game_over"
)

// Event is delivered to observers after the session state changed.
type Event struct {
	Kind     EventKind `json:"kind"`
	Move     *MoveView `json:"move,omitempty"`
	Snapshot Snapshot  `json:"snapshot"`
}

type Observer func(Event)
