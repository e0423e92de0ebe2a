package board

import (
	"github.com/pkg/errors"
)

// Shape costs.
const (
	Five         = 10_000_000
	BlockFive    = Five
	OpenFour     = 500_000
	SemiOpenFour = 200_000
	ClosedFour   = 50_000

	OpenThree     = 50_000
	SplitThree    = 40_000
	SemiOpenThree = 15_000
	ClosedThree   = 2_000

	OpenTwo     = 1_000
	SemiOpenTwo = 300
	ClosedTwo   = 50

	OpenOne     = 10
	SemiOpenOne = 3
	ClosedOne   = 1

	CrossThreat = 100_000
	TwoTwo      = 5_000
)

// Move generation thresholds on the annotated cell score.
const (
	FourThreshold  = SemiOpenFour
	ThreeThreshold = SplitThree
)

// Window geometry: a line is read up to lineRadius cells on each side of the
// scored cell, so no template may be longer than lineRadius+1.
const (
	lineRadius = 5
	lineTrits  = 2 * lineRadius
	lineCodes  = 59049 // 3^lineTrits
)

// Template cell classes.
const (
	tEmpty   = 0
	tOwn     = 1
	tBlocked = 2
)

// Shape is a named line configuration. Template is written over '0' (empty),
// '1' (own stone) and '2' (opponent stone or wall).
type Shape struct {
	Name     string
	Template string
	Cost     int
}

// Pattern is one aligned template: the scored cell sits at Offset, which is
// always an own-stone position of the template.
type Pattern struct {
	Name     string
	Offset   int
	Template []int8
	Cost     int
}

type match struct {
	id   int16
	cost int32
}

// PatternTable is the compiled, read-only pattern set shared by every board
// that evaluates with it.
type PatternTable struct {
	patterns []Pattern
	lookup   []match
}

// DefaultShapes is the stock shape list, strongest first.
func DefaultShapes() []Shape {
	return []Shape{
		{Name: "five", Template: "11111", Cost: Five},

		{Name: "open_four", Template: "011110", Cost: OpenFour},
		{Name: "semiopen_four", Template: "211110", Cost: SemiOpenFour},
		{Name: "semiopen_four", Template: "011112", Cost: SemiOpenFour},
		{Name: "split_four", Template: "10111", Cost: SemiOpenFour},
		{Name: "split_four", Template: "11011", Cost: SemiOpenFour},
		{Name: "split_four", Template: "11101", Cost: SemiOpenFour},

		{Name: "open_three", Template: "011100", Cost: OpenThree},
		{Name: "open_three", Template: "001110", Cost: OpenThree},
		{Name: "split_three", Template: "010110", Cost: SplitThree},
		{Name: "split_three", Template: "011010", Cost: SplitThree},
		{Name: "semiopen_three", Template: "01110", Cost: SemiOpenThree},
		{Name: "semiopen_three", Template: "211100", Cost: SemiOpenThree},
		{Name: "semiopen_three", Template: "001112", Cost: SemiOpenThree},
		{Name: "semiopen_three", Template: "211010", Cost: SemiOpenThree},
		{Name: "semiopen_three", Template: "010112", Cost: SemiOpenThree},
		{Name: "semiopen_three", Template: "210110", Cost: SemiOpenThree},
		{Name: "semiopen_three", Template: "011012", Cost: SemiOpenThree},
		{Name: "closed_three", Template: "10011", Cost: ClosedThree},
		{Name: "closed_three", Template: "11001", Cost: ClosedThree},
		{Name: "closed_three", Template: "10101", Cost: ClosedThree},

		{Name: "open_two", Template: "001100", Cost: OpenTwo},
		{Name: "open_two", Template: "011000", Cost: OpenTwo},
		{Name: "open_two", Template: "000110", Cost: OpenTwo},
		{Name: "semiopen_two", Template: "010100", Cost: SemiOpenTwo},
		{Name: "semiopen_two", Template: "001010", Cost: SemiOpenTwo},
		{Name: "semiopen_two", Template: "010010", Cost: SemiOpenTwo},
		{Name: "closed_two", Template: "211000", Cost: ClosedTwo},
		{Name: "closed_two", Template: "000112", Cost: ClosedTwo},
		{Name: "closed_two", Template: "210100", Cost: ClosedTwo},
		{Name: "closed_two", Template: "001012", Cost: ClosedTwo},

		{Name: "open_one", Template: "001000", Cost: OpenOne},
		{Name: "open_one", Template: "000100", Cost: OpenOne},
		{Name: "semiopen_one", Template: "010000", Cost: SemiOpenOne},
		{Name: "semiopen_one", Template: "000010", Cost: SemiOpenOne},
		{Name: "closed_one", Template: "21000", Cost: ClosedOne},
		{Name: "closed_one", Template: "00012", Cost: ClosedOne},
	}
}

// DefaultPatterns compiles DefaultShapes.
func DefaultPatterns() *PatternTable {
	table, err := NewPatternTable(DefaultShapes())
	if err != nil {
		panic(err)
	}
	return table
}

// NewPatternTable expands every shape into one Pattern per own-stone position
// and compiles the set into a lookup over the ten neighbours of a cell. When
// several patterns match the same neighbourhood the highest cost wins, and
// among equal costs the one listed first.
func NewPatternTable(shapes []Shape) (*PatternTable, error) {
	t := &PatternTable{lookup: make([]match, lineCodes)}
	for i := range t.lookup {
		t.lookup[i].id = -1
	}
	for _, shape := range shapes {
		tmpl, err := parseTemplate(shape.Template)
		if err != nil {
			return nil, errors.Wrapf(err, "shape %q", shape.Name)
		}
		if shape.Cost <= 0 {
			return nil, errors.Errorf("shape %q: cost must be positive", shape.Name)
		}
		for offset, v := range tmpl {
			if v != tOwn {
				continue
			}
			t.patterns = append(t.patterns, Pattern{
				Name:     shape.Name,
				Offset:   offset,
				Template: tmpl,
				Cost:     shape.Cost,
			})
		}
	}
	if len(t.patterns) > 1<<15-1 {
		return nil, errors.Errorf("too many patterns: %d", len(t.patterns))
	}
	for id := range t.patterns {
		t.compile(id)
	}
	return t, nil
}

func parseTemplate(s string) ([]int8, error) {
	if len(s) < 2 || len(s) > lineRadius+1 {
		return nil, errors.Errorf("template %q: length must be within [2, %d]", s, lineRadius+1)
	}
	out := make([]int8, len(s))
	own := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			out[i] = tEmpty
		case '1':
			out[i] = tOwn
			own = true
		case '2':
			out[i] = tBlocked
		default:
			return nil, errors.Errorf("template %q: invalid class %q", s, s[i])
		}
	}
	if !own {
		return nil, errors.Errorf("template %q: no own stone", s)
	}
	return out, nil
}

// compile writes pattern id into every neighbourhood code it matches.
func (t *PatternTable) compile(id int) {
	p := t.patterns[id]
	var fixed [lineTrits]int8
	for i := range fixed {
		fixed[i] = -1
	}
	for i, v := range p.Template {
		rel := i - p.Offset
		if rel == 0 {
			continue
		}
		fixed[tritIndex(rel)] = v
	}
	free := make([]int, 0, lineTrits)
	base := 0
	for i, v := range fixed {
		if v < 0 {
			free = append(free, i)
			continue
		}
		base += int(v) * pow3[i]
	}
	combos := pow3[len(free)]
	for n := 0; n < combos; n++ {
		code := base
		rest := n
		for _, idx := range free {
			code += (rest % 3) * pow3[idx]
			rest /= 3
		}
		if int32(p.Cost) > t.lookup[code].cost {
			t.lookup[code] = match{id: int16(id), cost: int32(p.Cost)}
		}
	}
}

// Patterns returns the expanded pattern list in table order.
func (t *PatternTable) Patterns() []Pattern {
	return t.patterns
}

func (t *PatternTable) match(code int) match {
	return t.lookup[code]
}

// name returns the shape name of a pattern id, or "" for none.
func (t *PatternTable) name(id int16) string {
	if id < 0 {
		return ""
	}
	return t.patterns[id].Name
}

// tritIndex maps a relative line position (-5..-1, 1..5) to its digit in the
// neighbourhood code.
func tritIndex(rel int) int {
	if rel < 0 {
		return rel + lineRadius
	}
	return rel + lineRadius - 1
}

var pow3 = func() [lineTrits + 1]int {
	var p [lineTrits + 1]int
	p[0] = 1
	for i := 1; i < len(p); i++ {
		p[i] = p[i-1] * 3
	}
	return p
}()
