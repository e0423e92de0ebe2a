package board

import (
	"sort"

	"github.com/samber/lo"
)

type candidate struct {
	idx   int
	score int
}

// Moves lists the empty cells worth searching for role, strongest first. A
// cell is annotated with the larger of both sides' scores there, so blocking
// squares rank next to attacking ones. onlyFour keeps cells reaching
// FourThreshold for either side, onlyThree cells reaching ThreeThreshold.
// Equal scores keep row-major order.
func (b *Board) Moves(role Role, onlyThree, onlyFour bool) []Point {
	near := b.nearStones()
	opp := role.Opponent()
	var cands []candidate
	for x := 0; x < b.size; x++ {
		for y := 0; y < b.size; y++ {
			idx := b.index(x, y)
			if b.cells[idx] != CellEmpty || (near != nil && !near[idx]) {
				continue
			}
			cands = append(cands, candidate{
				idx:   idx,
				score: max(b.eval.scores[role][idx], b.eval.scores[opp][idx]),
			})
		}
	}

	threshold := 0
	switch {
	case onlyFour:
		threshold = FourThreshold
	case onlyThree:
		threshold = ThreeThreshold
	}
	if threshold > 0 {
		cands = lo.Filter(cands, func(c candidate, _ int) bool {
			return c.score >= threshold
		})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})

	if limit := b.opts.MaxCandidates; limit > 0 && len(cands) > limit {
		keep := limit
		for keep < len(cands) && cands[keep].score >= FourThreshold {
			keep++
		}
		cands = cands[:keep]
	}

	return lo.Map(cands, func(c candidate, _ int) Point {
		return b.point(c.idx)
	})
}

// nearStones marks the cells within NeighborRadius of a stone. It returns nil
// when the radius is disabled, meaning every cell qualifies.
func (b *Board) nearStones() []bool {
	r := b.opts.NeighborRadius
	if r <= 0 {
		return nil
	}
	near := make([]bool, len(b.cells))
	for _, p := range b.history {
		for x := max(p.X-r, 0); x <= min(p.X+r, b.size-1); x++ {
			for y := max(p.Y-r, 0); y <= min(p.Y+r, b.size-1); y++ {
				near[b.index(x, y)] = true
			}
		}
	}
	return near
}

// ValuableMoves is the memoized move list the search consumes. In full-width
// mode one free cell of the central 3x3 block, picked by the board's seeded
// RNG, is appended when not already listed.
func (b *Board) ValuableMoves(role Role, depth int, onlyThree, onlyFour bool) []Point {
	key := movesKey{hash: b.Hash(), role: role, depth: depth, onlyThree: onlyThree, onlyFour: onlyFour}
	if !b.opts.DisableCache {
		if moves, ok := b.movesCache.Get(key); ok {
			return moves
		}
	}

	moves := b.Moves(role, onlyThree, onlyFour)
	if !onlyThree && !onlyFour {
		if free := b.freeCenterCells(); len(free) > 0 {
			pick := free[b.rng.Intn(len(free))]
			if !lo.Contains(moves, pick) {
				moves = append(moves, pick)
			}
		}
	}

	if !b.opts.DisableCache {
		b.movesCache.Put(key, moves)
	}
	return moves
}

func (b *Board) freeCenterCells() []Point {
	c := b.Center()
	var free []Point
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if b.IsEmpty(c.X+dx, c.Y+dy) {
				free = append(free, Point{X: c.X + dx, Y: c.Y + dy})
			}
		}
	}
	return free
}
