package board

import "testing"

func TestNewPatternTableRejectsBadShapes(t *testing.T) {
	cases := []Shape{
		{Name: "empty", Template: "", Cost: 1},
		{Name: "long", Template: "0111110", Cost: 1},
		{Name: "class", Template: "01x10", Cost: 1},
		{Name: "no_own", Template: "0000", Cost: 1},
		{Name: "free", Template: "0110", Cost: 0},
	}
	for _, c := range cases {
		if _, err := NewPatternTable([]Shape{c}); err == nil {
			t.Fatalf("expected shape %q to be rejected", c.Name)
		}
	}
}

func TestPatternExpansionPerOwnStone(t *testing.T) {
	table, err := NewPatternTable([]Shape{{Name: "split", Template: "01011", Cost: 7}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	patterns := table.Patterns()
	if len(patterns) != 3 {
		t.Fatalf("expected one pattern per own stone, got %d", len(patterns))
	}
	for i, want := range []int{1, 3, 4} {
		if patterns[i].Offset != want {
			t.Fatalf("pattern %d: expected offset %d, got %d", i, want, patterns[i].Offset)
		}
	}
}

func TestLookupPrefersHigherCostThenTableOrder(t *testing.T) {
	table, err := NewPatternTable([]Shape{
		{Name: "first", Template: "11", Cost: 5},
		{Name: "second", Template: "11", Cost: 5},
		{Name: "better", Template: "111", Cost: 9},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Own stone right of the scored cell, everything else empty.
	code := tOwn * pow3[tritIndex(1)]
	if got := table.name(table.match(code).id); got != "first" {
		t.Fatalf("expected the first listed pattern on a tie, got %q", got)
	}

	code += tOwn * pow3[tritIndex(2)]
	m := table.match(code)
	if table.name(m.id) != "better" || m.cost != 9 {
		t.Fatalf("expected the higher cost pattern, got %q %d", table.name(m.id), m.cost)
	}
}

func TestDefaultShapesFitWindow(t *testing.T) {
	for _, s := range DefaultShapes() {
		if len(s.Template) > lineRadius+1 {
			t.Fatalf("shape %q is wider than the evaluation window", s.Name)
		}
	}
	if len(DefaultPatterns().Patterns()) == 0 {
		t.Fatalf("expected compiled default patterns")
	}
}

func TestTritIndexCoversWindow(t *testing.T) {
	seen := make(map[int]bool)
	for rel := -lineRadius; rel <= lineRadius; rel++ {
		if rel == 0 {
			continue
		}
		i := tritIndex(rel)
		if i < 0 || i >= lineTrits || seen[i] {
			t.Fatalf("bad trit index %d for offset %d", i, rel)
		}
		seen[i] = true
	}
}
