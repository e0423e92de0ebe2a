package game

import "github.com/luxquant/gomoku/internal/board"

// Move reasons, derived from the score the engine attached to its choice.
const (
	ReasonFive      = "five"
	ReasonForcedWin = "forced win"
	ReasonStrong    = "strong"
	ReasonDefensive = "defensive"
	ReasonStandard  = "standard"
	ReasonHuman     = "human"
)

// strongScore marks an attack or a critical block. Heuristic values stay
// below Five, so anything at Five is a proven win: immediate when the
// predicted path is the move itself, forced otherwise.
const strongScore = board.Five / 5

func Reason(score, pathLen int) string {
	switch {
	case score >= board.Five && pathLen <= 1:
		return ReasonFive
	case score >= board.Five:
		return ReasonForcedWin
	case score >= strongScore:
		return ReasonStrong
	case score < 0:
		return ReasonDefensive
	default:
		return ReasonStandard
	}
}
