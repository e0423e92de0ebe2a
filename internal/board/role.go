package board

import "fmt"

// Role is one of the two sides.
type Role uint8

const (
	Black Role = iota
	White
)

func (r Role) Opponent() Role {
	return r ^ 1
}

func (r Role) String() string {
	if r == Black {
		return "Black"
	}
	return "White"
}

// Symbol is the one-letter stone used in text output.
func (r Role) Symbol() string {
	if r == Black {
		return "X"
	}
	return "O"
}

// Cell is the content of one grid square. CellWall only appears in the
// padding ring around the playable area.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
	CellWall
)

func CellFromRole(role Role) Cell {
	if role == Black {
		return CellBlack
	}
	return CellWhite
}

// Role returns the owner of a stone cell; ok is false for empty and wall cells.
func (c Cell) Role() (Role, bool) {
	switch c {
	case CellBlack:
		return Black, true
	case CellWhite:
		return White, true
	default:
		return Black, false
	}
}

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	case CellWall:
		return "Wall"
	default:
		return "Empty"
	}
}

// Point is a board coordinate, 0-based.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Placement is one entry of the move history.
type Placement struct {
	X    int  `json:"x"`
	Y    int  `json:"y"`
	Role Role `json:"role"`
}

func (p Placement) Point() Point {
	return Point{X: p.X, Y: p.Y}
}
