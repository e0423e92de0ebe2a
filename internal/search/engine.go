// Package search implements the negamax alpha-beta engine that picks moves
// for a board.Board.
package search

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/luxquant/gomoku/internal/board"
	"github.com/luxquant/gomoku/internal/cache"
)

// Max bounds every score the engine produces.
const Max = 100_000_000

// DefaultThreatPlyThreshold is the ply after which the search only looks at
// threat moves, and below which full-width nodes are stored in the
// transposition table.
const DefaultThreatPlyThreshold = 6

type Config struct {
	Depth              int
	ThreatPlyThreshold int
	CacheCapacity      int
	DisableCache       bool
	Logger             zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		Depth:              3,
		ThreatPlyThreshold: DefaultThreatPlyThreshold,
		Logger:             zerolog.Nop(),
	}
}

// Result is a scored decision. Path is the predicted continuation from the
// searched position, starting with Move.
type Result struct {
	Value   int           `json:"value"`
	Move    board.Point   `json:"move"`
	HasMove bool          `json:"has_move"`
	Path    []board.Point `json:"path"`
}

// Stats counts engine activity since construction.
type Stats struct {
	Searches int `json:"searches"`
	Stored   int `json:"stored"`
	Hits     int `json:"hits"`
}

type ttEntry struct {
	role      board.Role
	onlyThree bool
	onlyFour  bool
	depth     int
	value     int
	move      board.Point
	hasMove   bool
	path      []board.Point
}

// Engine carries the transposition table across turns. It is not safe for
// concurrent use.
type Engine struct {
	cfg   Config
	tt    *cache.Cache[uint64, ttEntry]
	stats Stats
	log   zerolog.Logger
}

// New returns an engine searching depth plies with default settings.
func New(depth int) *Engine {
	cfg := DefaultConfig()
	cfg.Depth = depth
	return NewEngine(cfg)
}

func NewEngine(cfg Config) *Engine {
	if cfg.Depth < 1 {
		cfg.Depth = 1
	}
	if cfg.ThreatPlyThreshold <= 0 {
		cfg.ThreatPlyThreshold = DefaultThreatPlyThreshold
	}
	return &Engine{
		cfg: cfg,
		tt:  cache.New[uint64, ttEntry](cfg.CacheCapacity),
		log: cfg.Logger.With().Str("component", "ai:search").Logger(),
	}
}

func (e *Engine) Depth() int {
	return e.cfg.Depth
}

func (e *Engine) Stats() Stats {
	return e.stats
}

// MakeMove chooses a move for role. The board is used as scratch space and
// is left exactly as it was passed in.
//
// An empty board is answered with its centre. Otherwise a threat-only search
// three times deeper than the configured depth looks for a forced win; failing
// that a full-width search picks the move, which is then checked against the
// mirrored position: if, after it, the opponent's stones would carry a forced
// win with a longer continuation than ours, that winning move is played
// instead.
func (e *Engine) MakeMove(b *board.Board, role board.Role) Result {
	if b.MoveCount() == 0 {
		return Result{Move: b.Center(), HasMove: true, Path: []board.Point{}}
	}
	threatDepth := e.cfg.Depth * 3

	res := e.analyze(b, true, false, role, threatDepth, 0, nil, -Max, Max)
	if res.Value >= board.Five {
		e.logResult("forced win", res)
		return res
	}

	res = e.analyze(b, false, false, role, e.cfg.Depth, 0, nil, -Max, Max)
	if !res.HasMove {
		e.logResult("no move", res)
		return res
	}

	mirror := e.checkMirror(b, role, res.Move, threatDepth)
	if mirrorOverrides(res, mirror) {
		res = Result{Value: res.Value, Move: mirror.Move, HasMove: mirror.HasMove, Path: mirror.Path}
		e.logResult("mirrored", res)
		return res
	}
	e.logResult("full width", res)
	return res
}

// mirrorOverrides reports whether the opponent's forced win found by
// checkMirror should replace a non-decisive full-width choice.
func mirrorOverrides(res, mirror Result) bool {
	return res.Value < board.Five && mirror.HasMove && mirror.Value == board.Five && len(mirror.Path) > len(res.Path)
}

// checkMirror plays move, then runs a threat search for role on the board
// with every stone's colour swapped.
func (e *Engine) checkMirror(b *board.Board, role board.Role, move board.Point, depth int) Result {
	if !b.Put(move.X, move.Y, role) {
		return Result{Value: -Max}
	}
	defer b.Undo()
	return e.analyze(b.Reverse(), true, false, role, depth, 0, nil, -Max, Max)
}

func (e *Engine) analyze(b *board.Board, onlyThree, onlyFour bool, role board.Role, depth, cdepth int, path []board.Point, alpha, beta int) Result {
	e.stats.Searches++

	if cdepth >= depth || b.IsGameOver() {
		return Result{Value: b.Evaluate(role), Path: path}
	}

	hash := b.Hash()
	if !e.cfg.DisableCache {
		if prev, ok := e.tt.Get(hash); ok && prev.role == role &&
			prev.onlyThree == onlyThree && prev.onlyFour == onlyFour &&
			(abs(prev.value) >= board.Five || prev.depth >= depth-cdepth) {
			e.stats.Hits++
			return Result{
				Value:   prev.value,
				Move:    prev.move,
				HasMove: prev.hasMove,
				Path:    append(path[:len(path):len(path)], prev.path...),
			}
		}
	}

	value := -Max
	var best board.Point
	hasMove := false
	bestPath := path
	bestDepth := len(bestPath)

	moves := b.ValuableMoves(role, cdepth, onlyThree || cdepth > e.cfg.ThreatPlyThreshold, onlyFour)
	if len(moves) == 0 {
		return Result{Value: b.Evaluate(role), Path: path}
	}

depths:
	for d := cdepth + 1; d <= depth; d++ {
		for _, p := range moves {
			child, ok := e.child(b, onlyThree, onlyFour, role, d, cdepth, path, p, alpha, beta)
			if !ok {
				continue
			}
			score := -child.Value

			if score >= board.Five || d == depth {
				longerDefence := score <= -board.Five && value <= -board.Five && len(child.Path) > bestDepth
				if score > value || longerDefence {
					value = score
					best = p
					hasMove = true
					bestPath = child.Path
					bestDepth = len(bestPath)
				}
			}

			alpha = max(alpha, value)
			if alpha >= board.Five {
				break depths
			}
			if alpha >= beta {
				break
			}
		}
	}

	if !e.cfg.DisableCache && (cdepth < e.cfg.ThreatPlyThreshold || onlyThree || onlyFour) {
		var suffix []board.Point
		if len(bestPath) >= cdepth {
			suffix = slices.Clone(bestPath[cdepth:])
		}
		e.tt.Put(hash, ttEntry{
			role:      role,
			onlyThree: onlyThree,
			onlyFour:  onlyFour,
			depth:     depth - cdepth,
			value:     value,
			move:      best,
			hasMove:   hasMove,
			path:      suffix,
		})
		e.stats.Stored++
	}

	return Result{Value: value, Move: best, HasMove: hasMove, Path: bestPath}
}

// child searches the reply to p for the opponent. The board is restored on
// return whatever the outcome.
func (e *Engine) child(b *board.Board, onlyThree, onlyFour bool, role board.Role, depth, cdepth int, path []board.Point, p board.Point, alpha, beta int) (Result, bool) {
	if !b.Put(p.X, p.Y, role) {
		return Result{}, false
	}
	defer b.Undo()
	next := append(path[:len(path):len(path)], p)
	return e.analyze(b, onlyThree, onlyFour, role.Opponent(), depth, cdepth+1, next, -beta, -alpha), true
}

func (e *Engine) logResult(phase string, res Result) {
	ev := e.log.Debug().
		Str("phase", phase).
		Int("value", res.Value).
		Int("path_len", len(res.Path)).
		Int("searches", e.stats.Searches).
		Int("stored", e.stats.Stored).
		Int("hits", e.stats.Hits)
	if res.HasMove {
		ev = ev.Stringer("move", res.Move)
	}
	ev.Msg("move selected")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
