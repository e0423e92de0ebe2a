package board

// evaluator keeps, for every cell, role and direction, the best pattern that
// matches the line through the cell as if role had a stone there. Entries are
// only recomputed when a placement within lineRadius on the same line marks
// them dirty.
type evaluator struct {
	b     *Board
	table *PatternTable
	cells int

	// shapes and dirty are indexed by slot(role, dir, idx).
	shapes []match
	dirty  []bool

	base   [2][]int
	scores [2][]int
	totals [2]int
}

func (e *evaluator) init(b *Board) {
	e.b = b
	e.table = b.opts.Patterns
	e.cells = len(b.cells)
	e.shapes = make([]match, 2*len(directions)*e.cells)
	e.dirty = make([]bool, len(e.shapes))
	for i := range e.shapes {
		e.shapes[i].id = -1
		e.dirty[i] = true
	}
	for r := range e.scores {
		e.base[r] = make([]int, e.cells)
		e.scores[r] = make([]int, e.cells)
	}
	for x := 0; x < b.size; x++ {
		for y := 0; y < b.size; y++ {
			e.refresh(b.index(x, y))
		}
	}
}

func (e *evaluator) slot(role Role, dir, idx int) int {
	return (int(role)*len(directions)+dir)*e.cells + idx
}

func (e *evaluator) placed(idx int)  { e.touch(idx) }
func (e *evaluator) removed(idx int) { e.touch(idx) }

// touch dirties every entry whose line window covers idx and rescores the
// affected cells. Lines through idx only cross at idx, so each cell is
// visited once.
func (e *evaluator) touch(idx int) {
	cells := e.b.cells
	for d := range directions {
		e.markDirty(d, idx)
	}
	e.refresh(idx)
	for d := range directions {
		delta := e.b.delta(d)
		for _, step := range [2]int{delta, -delta} {
			j := idx
			for k := 0; k < lineRadius; k++ {
				j += step
				if cells[j] == CellWall {
					break
				}
				e.markDirty(d, j)
				e.refresh(j)
			}
		}
	}
}

func (e *evaluator) markDirty(dir, idx int) {
	e.dirty[e.slot(Black, dir, idx)] = true
	e.dirty[e.slot(White, dir, idx)] = true
}

// refresh recomputes the scores of one cell. Occupied cells score zero and
// keep their shape entries dirty until they are emptied again.
func (e *evaluator) refresh(idx int) {
	if e.b.cells[idx] != CellEmpty {
		for r := range e.scores {
			e.totals[r] -= e.scores[r][idx]
			e.scores[r][idx] = 0
			e.base[r][idx] = 0
		}
		return
	}
	for r := Black; r <= White; r++ {
		sum := 0
		for d := range directions {
			s := e.slot(r, d, idx)
			if e.dirty[s] {
				e.shapes[s] = e.table.match(e.lineCode(idx, d, r))
				e.dirty[s] = false
			}
			sum += int(e.shapes[s].cost)
		}
		e.base[r][idx] = sum
	}
	for r := Black; r <= White; r++ {
		score := e.base[r][idx] + surcharge(e.base[r.Opponent()][idx])
		e.totals[r] += score - e.scores[r][idx]
		e.scores[r][idx] = score
	}
}

// lineCode encodes the lineRadius cells on each side of idx along dir from
// role's point of view. Once the wall is reached every further cell reads as
// blocked.
func (e *evaluator) lineCode(idx, dir int, role Role) int {
	cells := e.b.cells
	own := CellFromRole(role)
	delta := e.b.delta(dir)
	code := 0
	for _, sign := range [2]int{-1, 1} {
		j := idx
		walled := false
		for k := 1; k <= lineRadius; k++ {
			t := tBlocked
			if !walled {
				j += sign * delta
				switch cells[j] {
				case CellEmpty:
					t = tEmpty
				case own:
					t = tOwn
				case CellWall:
					walled = true
				}
			}
			code += t * pow3[tritIndex(sign*k)]
		}
	}
	return code
}

// surcharge rewards occupying a cell the opponent needs.
func surcharge(opp int) int {
	switch {
	case opp >= Five:
		return BlockFive / 10
	case opp >= OpenFour:
		return CrossThreat
	case opp >= SemiOpenFour:
		return 20_000
	case opp >= SplitThree:
		return TwoTwo
	}
	return 0
}

// squashKnee is where heuristic differences start being compressed.
const squashKnee = Five / 2

// squash maps a heuristic difference monotonically into (-Five, Five), so
// only a completed five ever reaches the decisive threshold. Values within
// squashKnee pass through unchanged.
func squash(v int) int {
	a := v
	if a < 0 {
		a = -a
	}
	if a <= squashKnee {
		return v
	}
	over := a - squashKnee
	a = squashKnee + (Five-1-squashKnee)*over/(over+Five)
	if v < 0 {
		return -a
	}
	return a
}

// Evaluate scores the position for role: +Five or -Five once someone has won,
// otherwise the difference of both sides' summed cell scores, compressed to
// stay strictly between the two.
func (b *Board) Evaluate(role Role) int {
	key := evalKey{hash: b.Hash(), role: role}
	if !b.opts.DisableCache {
		if v, ok := b.evalCache.Get(key); ok {
			return v
		}
	}
	var v int
	if winner, ok := b.Winner(); ok {
		v = -Five
		if winner == role {
			v = Five
		}
	} else {
		v = squash(b.eval.totals[role] - b.eval.totals[role.Opponent()])
	}
	if !b.opts.DisableCache {
		b.evalCache.Put(key, v)
	}
	return v
}

// Score is the cached value of (x, y) for role; zero for occupied or
// off-board cells.
func (b *Board) Score(x, y int, role Role) int {
	if !b.InBounds(x, y) {
		return 0
	}
	return b.eval.scores[role][b.index(x, y)]
}

// Shape reports the pattern matched at an empty (x, y) for role along
// direction dir (0..3). It returns "" and 0 when nothing matches or the cell
// is occupied.
func (b *Board) Shape(x, y int, role Role, dir int) (string, int) {
	if !b.IsEmpty(x, y) || dir < 0 || dir >= len(directions) {
		return "", 0
	}
	m := b.eval.shapes[b.eval.slot(role, dir, b.index(x, y))]
	return b.opts.Patterns.name(m.id), int(m.cost)
}
