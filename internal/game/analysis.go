package game

import (
	"fmt"
	"strings"

	"github.com/luxquant/gomoku/internal/board"
)

// Threat levels describe the opponent's score at a cell, opportunity levels
// the mover's own.
const (
	LevelCritical = "critical"
	LevelHigh     = "high"
	LevelMedium   = "medium"
	LevelLow      = "low"

	LevelWinning   = "winning"
	LevelExcellent = "excellent"
	LevelGood      = "good"
	LevelModerate  = "moderate"
)

// CellAnalysis explains a chosen cell from the mover's point of view. It
// must be taken before the stone is placed: occupied cells score zero.
type CellAnalysis struct {
	Own         int      `json:"own"`
	Opp         int      `json:"opp"`
	Threat      string   `json:"threat,omitempty"`
	Opportunity string   `json:"opportunity,omitempty"`
	Shapes      []string `json:"shapes,omitempty"`
}

var directionNames = [4]string{"horizontal", "vertical", "diagonal", "anti-diagonal"}

// AnalyzeCell scores move for role and the opponent and lists the shapes it
// makes or blocks per direction.
func AnalyzeCell(b *board.Board, move board.Point, role board.Role) CellAnalysis {
	a := CellAnalysis{
		Own: b.Score(move.X, move.Y, role),
		Opp: b.Score(move.X, move.Y, role.Opponent()),
	}
	a.Threat = threatLevel(a.Opp)
	a.Opportunity = opportunityLevel(a.Own)
	for dir, name := range directionNames {
		if shape, _ := b.Shape(move.X, move.Y, role, dir); shape != "" {
			a.Shapes = append(a.Shapes, fmt.Sprintf("%s:%s", name, shape))
		}
		if shape, _ := b.Shape(move.X, move.Y, role.Opponent(), dir); shape != "" && !strings.HasSuffix(shape, "_one") {
			a.Shapes = append(a.Shapes, fmt.Sprintf("%s:blocks_%s", name, shape))
		}
	}
	return a
}

func threatLevel(opp int) string {
	switch {
	case opp >= board.Five:
		return LevelCritical
	case opp >= board.OpenFour:
		return LevelHigh
	case opp >= board.SemiOpenFour:
		return LevelMedium
	case opp >= board.SplitThree:
		return LevelLow
	}
	return ""
}

func opportunityLevel(own int) string {
	switch {
	case own >= board.Five:
		return LevelWinning
	case own >= board.OpenFour:
		return LevelExcellent
	case own >= board.SemiOpenFour:
		return LevelGood
	case own >= board.SplitThree:
		return LevelModerate
	}
	return ""
}
