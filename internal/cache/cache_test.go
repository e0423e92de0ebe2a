package cache

import "testing"

func TestPutGetHas(t *testing.T) {
	c := New[uint64, int](4)
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected miss on empty cache")
	}
	c.Put(1, 10)
	if v, ok := c.Get(1); !ok || v != 10 {
		t.Fatalf("expected (10, true), got (%d, %v)", v, ok)
	}
	if !c.Has(1) || c.Has(2) {
		t.Fatalf("unexpected Has result")
	}
}

func TestEvictsOldestInserted(t *testing.T) {
	c := New[int, string](3)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")
	c.Put(4, "d")
	if c.Has(1) {
		t.Fatalf("expected key 1 to be evicted")
	}
	for _, k := range []int{2, 3, 4} {
		if !c.Has(k) {
			t.Fatalf("expected key %d to survive", k)
		}
	}
	c.Put(5, "e")
	c.Put(6, "f")
	if c.Has(2) || c.Has(3) {
		t.Fatalf("expected keys 2 and 3 to be evicted after wrap")
	}
	if c.Len() != 3 {
		t.Fatalf("expected len 3, got %d", c.Len())
	}
}

func TestUpdateKeepsEvictionOrder(t *testing.T) {
	c := New[int, int](2)
	c.Put(1, 1)
	c.Put(2, 2)
	// Updating key 1 must not make it younger than key 2.
	c.Put(1, 100)
	c.Put(3, 3)
	if c.Has(1) {
		t.Fatalf("expected updated key 1 to still be evicted first")
	}
	if v, _ := c.Get(2); v != 2 {
		t.Fatalf("expected key 2 to survive with value 2, got %d", v)
	}
}

func TestZeroCapacityMeansDefault(t *testing.T) {
	c := New[int, int](0)
	if c.Capacity() != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, c.Capacity())
	}
	for i := 0; i < 1000; i++ {
		c.Put(i, i)
	}
	if c.Len() != 1000 {
		t.Fatalf("expected nothing evicted, got len %d", c.Len())
	}
}

func TestCompositeKeys(t *testing.T) {
	type key struct {
		hash uint64
		role int
	}
	c := New[key, int](8)
	c.Put(key{hash: 7, role: 0}, 1)
	c.Put(key{hash: 7, role: 1}, -1)
	if v, _ := c.Get(key{hash: 7, role: 1}); v != -1 {
		t.Fatalf("expected role-specific entry, got %d", v)
	}
}
