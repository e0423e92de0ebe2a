package game

import (
	"fmt"
	"strings"

	"github.com/luxquant/gomoku/internal/board"
)

// Render draws the grid with x running across and y down, X for black,
// O for white and . for empty cells.
func Render(b *board.Board) string {
	size := b.Size()
	var sb strings.Builder
	sb.WriteString("   ")
	for x := 0; x < size; x++ {
		fmt.Fprintf(&sb, "%3d", x)
	}
	sb.WriteByte('\n')
	for y := 0; y < size; y++ {
		fmt.Fprintf(&sb, "%3d", y)
		for x := 0; x < size; x++ {
			fmt.Fprintf(&sb, "%3s", cellSymbol(b.At(x, y)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Rows returns one string per y, each cell as its symbol.
func Rows(b *board.Board) []string {
	size := b.Size()
	rows := make([]string, size)
	for y := 0; y < size; y++ {
		var sb strings.Builder
		for x := 0; x < size; x++ {
			sb.WriteString(cellSymbol(b.At(x, y)))
		}
		rows[y] = sb.String()
	}
	return rows
}

func cellSymbol(c board.Cell) string {
	if role, ok := c.Role(); ok {
		return role.Symbol()
	}
	return "."
}

// RenderCandidates lists up to limit moves, five per line.
func RenderCandidates(moves []board.Point, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Candidate moves (%d):\n", len(moves))
	shown := moves
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for i, p := range shown {
		if i > 0 && i%5 == 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "  (%2d,%2d)", p.X, p.Y)
	}
	if len(shown) > 0 {
		sb.WriteByte('\n')
	}
	if rest := len(moves) - len(shown); rest > 0 {
		fmt.Fprintf(&sb, "  ... and %d more\n", rest)
	}
	return sb.String()
}

const pathPreview = 10

// FormatPath joins up to limit points of a predicted continuation.
func FormatPath(path []board.Point, limit int) string {
	shown := path
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, p := range shown {
		parts = append(parts, p.String())
	}
	if rest := len(path) - len(shown); rest > 0 {
		parts = append(parts, fmt.Sprintf("+%d", rest))
	}
	return strings.Join(parts, " ")
}
