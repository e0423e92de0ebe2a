package game

import (
	"github.com/luxquant/gomoku/internal/board"
	"github.com/luxquant/gomoku/internal/search"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

func (t PlayerType) String() string {
	if t == PlayerAI {
		return "AI"
	}
	return "Human"
}

// Player decides moves for one role. Human players only ever return a move
// that was submitted to them.
type Player interface {
	IsHuman() bool
	ChooseMove(b *board.Board, role board.Role) (search.Result, bool)
}

type HumanPlayer struct {
	pending     bool
	pendingMove board.Point
}

func NewHumanPlayer() *HumanPlayer {
	return &HumanPlayer{}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

func (h *HumanPlayer) ChooseMove(*board.Board, board.Role) (search.Result, bool) {
	if !h.pending {
		return search.Result{}, false
	}
	move := h.TakePendingMove()
	return search.Result{Move: move, HasMove: true, Path: []board.Point{move}}, true
}

func (h *HumanPlayer) SetPendingMove(move board.Point) {
	h.pendingMove = move
	h.pending = true
}

func (h *HumanPlayer) TakePendingMove() board.Point {
	h.pending = false
	return h.pendingMove
}

// AIPlayer owns an engine, so its transposition table survives across the
// turns of one game.
type AIPlayer struct {
	engine *search.Engine
}

func NewAIPlayer(cfg search.Config) *AIPlayer {
	return &AIPlayer{engine: search.NewEngine(cfg)}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

// ChooseMove always reports true: the search result is final even when it
// carries no move.
func (a *AIPlayer) ChooseMove(b *board.Board, role board.Role) (search.Result, bool) {
	return a.engine.MakeMove(b, role), true
}

func (a *AIPlayer) Engine() *search.Engine {
	return a.engine
}
