package cache

import "testing"

func TestRecordCacheEvictsOldestBeyondBound(t *testing.T) {
	c := NewRecordCache[int](2)

	a, b, d := new(int), new(int), new(int)
	*a, *b, *d = 1, 2, 3
	c.Deallocate(a)
	c.Deallocate(b)
	c.Deallocate(d) // exceeds bound 2: a is evicted

	first := c.Allocate()
	if first != b {
		t.Fatalf("Allocate() = %p, want %p (b); a should have been evicted", first, b)
	}
}

func TestRecordCacheZeroBoundTakesDefault(t *testing.T) {
	c := NewRecordCache[int](0)
	if c.bound != defaultBound {
		t.Fatalf("bound = %d, want default %d", c.bound, defaultBound)
	}
}

func TestCacheForReusesRecordCachePerKind(t *testing.T) {
	s := NewStore()
	a := CacheFor[int](s, "item")
	b := CacheFor[int](s, "item")
	if a != b {
		t.Fatal("CacheFor returned a new cache for the same kind")
	}
}

func TestCacheForHonorsStoreBound(t *testing.T) {
	s := NewStoreWithBound(5)
	c := CacheFor[int](s, "item")
	if c.bound != 5 {
		t.Fatalf("bound = %d, want 5", c.bound)
	}
}

func TestNewStoreWithBoundZeroTakesDefault(t *testing.T) {
	s := NewStoreWithBound(0)
	c := CacheFor[int](s, "item")
	if c.bound != defaultBound {
		t.Fatalf("bound = %d, want default %d", c.bound, defaultBound)
	}
}
