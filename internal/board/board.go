// Package board owns the gomoku grid, its move history and fingerprint, and
// the incremental pattern evaluator the search is driven by.
//
// A Board is a scratchpad: the search mutates it in place with Put and
// restores it with Undo. It is not safe for concurrent use.
package board

import (
	"lukechampine.com/frand"

	"github.com/luxquant/gomoku/internal/cache"
	"github.com/luxquant/gomoku/internal/zobrist"
)

// Options configures a Board. The zero value is usable; DefaultOptions holds
// the settings the engine is tuned for.
type Options struct {
	// Seed drives the zobrist keys and the centre tie-break in ValuableMoves.
	Seed uint64
	// Patterns is shared read-only; nil compiles DefaultPatterns.
	Patterns *PatternTable
	// CacheCapacity bounds each memo cache; 0 selects cache.DefaultCapacity.
	CacheCapacity int
	// DisableCache turns off winner, game-over, evaluation and move-list memoization.
	DisableCache bool
	// MaxCandidates caps Moves after sorting; 0 keeps every candidate.
	MaxCandidates int
	// NeighborRadius restricts Moves to cells within this Chebyshev distance
	// of a stone; 0 or less considers every empty cell.
	NeighborRadius int
}

func DefaultOptions() Options {
	return Options{
		Seed:           1,
		MaxCandidates:  20,
		NeighborRadius: 2,
	}
}

// Directions scanned by the evaluator and the winner check.
var directions = [4][2]int{
	{1, 0},  // along x
	{0, 1},  // along y
	{1, 1},  // diagonal
	{1, -1}, // anti-diagonal
}

type winnerEntry struct {
	role Role
	ok   bool
}

type evalKey struct {
	hash uint64
	role Role
}

type movesKey struct {
	hash      uint64
	role      Role
	depth     int
	onlyThree bool
	onlyFour  bool
}

type Board struct {
	size    int
	stride  int
	cells   []Cell
	history []Placement
	empties int
	opts    Options
	hasher  *zobrist.Hasher
	rng     *frand.RNG

	eval evaluator

	winnerCache   *cache.Cache[uint64, winnerEntry]
	gameOverCache *cache.Cache[uint64, bool]
	evalCache     *cache.Cache[evalKey, int]
	movesCache    *cache.Cache[movesKey, []Point]
}

// New returns an empty size x size board.
func New(size int, opts Options) *Board {
	if opts.Patterns == nil {
		opts.Patterns = DefaultPatterns()
	}
	stride := size + 2
	b := &Board{
		size:    size,
		stride:  stride,
		cells:   make([]Cell, stride*stride),
		empties: size * size,
		opts:    opts,
		hasher:  zobrist.New(size, opts.Seed),
		rng:     zobrist.NewRNG(opts.Seed, ^uint64(size)),

		winnerCache:   cache.New[uint64, winnerEntry](opts.CacheCapacity),
		gameOverCache: cache.New[uint64, bool](opts.CacheCapacity),
		evalCache:     cache.New[evalKey, int](opts.CacheCapacity),
		movesCache:    cache.New[movesKey, []Point](opts.CacheCapacity),
	}
	for i := 0; i < stride; i++ {
		b.cells[i] = CellWall
		b.cells[(stride-1)*stride+i] = CellWall
		b.cells[i*stride] = CellWall
		b.cells[i*stride+stride-1] = CellWall
	}
	b.eval.init(b)
	return b
}

// Put places a stone for role at (x, y). It returns false, leaving the board
// untouched, when the cell is off the board or occupied.
func (b *Board) Put(x, y int, role Role) bool {
	if !b.InBounds(x, y) {
		return false
	}
	idx := b.index(x, y)
	if b.cells[idx] != CellEmpty {
		return false
	}
	b.cells[idx] = CellFromRole(role)
	b.history = append(b.history, Placement{X: x, Y: y, Role: role})
	b.empties--
	b.hasher.Toggle(x, y, int(role))
	b.eval.placed(idx)
	return true
}

// Undo takes back the last placement. It returns false on an empty history.
func (b *Board) Undo() bool {
	n := len(b.history)
	if n == 0 {
		return false
	}
	last := b.history[n-1]
	b.history = b.history[:n-1]
	idx := b.index(last.X, last.Y)
	b.cells[idx] = CellEmpty
	b.empties++
	b.hasher.Toggle(last.X, last.Y, int(last.Role))
	b.eval.removed(idx)
	return true
}

// Winner reports the owner of a five-in-a-row, if any. When several exist the
// first one in scan order is reported.
func (b *Board) Winner() (Role, bool) {
	hash := b.Hash()
	if !b.opts.DisableCache {
		if w, ok := b.winnerCache.Get(hash); ok {
			return w.role, w.ok
		}
	}
	w := b.scanWinner()
	if !b.opts.DisableCache {
		b.winnerCache.Put(hash, w)
	}
	return w.role, w.ok
}

func (b *Board) scanWinner() winnerEntry {
	for x := 0; x < b.size; x++ {
		for y := 0; y < b.size; y++ {
			idx := b.index(x, y)
			role, ok := b.cells[idx].Role()
			if !ok {
				continue
			}
			for d := range directions {
				if b.runLength(idx, b.delta(d)) >= 5 {
					return winnerEntry{role: role, ok: true}
				}
			}
		}
	}
	return winnerEntry{}
}

// runLength counts same-colour stones starting at idx and stepping by delta.
// The wall ring ends every run.
func (b *Board) runLength(idx, delta int) int {
	cell := b.cells[idx]
	n := 0
	for b.cells[idx] == cell {
		n++
		idx += delta
	}
	return n
}

// IsGameOver is true once a side has five in a row or the board is full.
func (b *Board) IsGameOver() bool {
	hash := b.Hash()
	if !b.opts.DisableCache {
		if over, ok := b.gameOverCache.Get(hash); ok {
			return over
		}
	}
	_, won := b.Winner()
	over := won || b.empties == 0
	if !b.opts.DisableCache {
		b.gameOverCache.Put(hash, over)
	}
	return over
}

// Reverse replays the history with every role swapped into a fresh board
// built with the same options.
func (b *Board) Reverse() *Board {
	rev := New(b.size, b.opts)
	for _, p := range b.history {
		rev.Put(p.X, p.Y, p.Role.Opponent())
	}
	return rev
}

func (b *Board) Hash() uint64 {
	return b.hasher.Hash()
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) Options() Options {
	return b.opts
}

func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.size && y < b.size
}

// At returns the cell at (x, y); coordinates off the board read as CellWall.
func (b *Board) At(x, y int) Cell {
	if !b.InBounds(x, y) {
		return CellWall
	}
	return b.cells[b.index(x, y)]
}

func (b *Board) IsEmpty(x, y int) bool {
	return b.At(x, y) == CellEmpty
}

// History returns a copy of the placements in play order.
func (b *Board) History() []Placement {
	return append([]Placement(nil), b.history...)
}

func (b *Board) MoveCount() int {
	return len(b.history)
}

// LastMove returns the most recent placement, if any.
func (b *Board) LastMove() (Placement, bool) {
	if len(b.history) == 0 {
		return Placement{}, false
	}
	return b.history[len(b.history)-1], true
}

func (b *Board) Center() Point {
	return Point{X: b.size / 2, Y: b.size / 2}
}

func (b *Board) index(x, y int) int {
	return (x+1)*b.stride + y + 1
}

func (b *Board) point(idx int) Point {
	return Point{X: idx/b.stride - 1, Y: idx%b.stride - 1}
}

func (b *Board) delta(d int) int {
	return directions[d][0]*b.stride + directions[d][1]
}
