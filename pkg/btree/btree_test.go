package btree

import "testing"

type intKey int

func (k intKey) Compare(other Comparable) int {
	o := other.(intKey)
	switch {
	case k < o:
		return -1
	case k > o:
		return 1
	default:
		return 0
	}
}

func TestInsertAndGet(t *testing.T) {
	tree := NewUnique[string](3)

	if err := tree.Insert(intKey(5), "five"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	v, ok := tree.Get(intKey(5))
	if !ok || v != "five" {
		t.Fatalf("got %q, %v; want five, true", v, ok)
	}
}

func TestInsertDuplicateFailsOnUniqueTree(t *testing.T) {
	tree := NewUnique[string](3)
	if err := tree.Insert(intKey(1), "a"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := tree.Insert(intKey(1), "b"); err == nil {
		t.Fatal("expected duplicate key error")
	}
	v, _ := tree.Get(intKey(1))
	if v != "a" {
		t.Fatalf("duplicate insert mutated existing value: got %q", v)
	}
}

func TestGetMissingKey(t *testing.T) {
	tree := NewUnique[string](3)
	if _, ok := tree.Get(intKey(99)); ok {
		t.Fatal("expected miss")
	}
}

func TestReplaceOverwrites(t *testing.T) {
	tree := NewUnique[string](3)
	_ = tree.Insert(intKey(1), "a")
	if err := tree.Replace(intKey(1), "b"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	v, _ := tree.Get(intKey(1))
	if v != "b" {
		t.Fatalf("got %q, want b", v)
	}
}

func TestRemove(t *testing.T) {
	tree := NewUnique[string](3)
	_ = tree.Insert(intKey(1), "a")
	if !tree.Remove(intKey(1)) {
		t.Fatal("expected removal to report true")
	}
	if _, ok := tree.Get(intKey(1)); ok {
		t.Fatal("key still present after remove")
	}
	if tree.Remove(intKey(1)) {
		t.Fatal("second remove should report false")
	}
}

func TestRangeAscendingOrderAndSplits(t *testing.T) {
	tree := NewUnique[int](3)
	const n = 200
	for i := n - 1; i >= 0; i-- {
		if err := tree.Insert(intKey(i), i); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	var seen []int
	tree.Range(nil, nil, func(k Comparable, v int) bool {
		seen = append(seen, v)
		return true
	})

	if len(seen) != n {
		t.Fatalf("got %d records, want %d", len(seen), n)
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("out of order at %d: got %d", i, v)
		}
	}
}

func TestRangeHalfOpenBounds(t *testing.T) {
	tree := NewUnique[int](3)
	for i := 0; i < 10; i++ {
		_ = tree.Insert(intKey(i), i)
	}

	var got []int
	tree.Range(intKey(3), intKey(6), func(k Comparable, v int) bool {
		got = append(got, v)
		return true
	})

	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRangeEarlyStop(t *testing.T) {
	tree := NewUnique[int](3)
	for i := 0; i < 10; i++ {
		_ = tree.Insert(intKey(i), i)
	}

	count := 0
	tree.Range(nil, nil, func(k Comparable, v int) bool {
		count++
		return count < 3
	})

	if count != 3 {
		t.Fatalf("got %d callbacks, want 3", count)
	}
}

func TestNonUniqueTreeAllowsOverwrite(t *testing.T) {
	tree := New[string](3)
	if err := tree.Insert(intKey(1), "a"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tree.Insert(intKey(1), "b"); err != nil {
		t.Fatalf("second insert on non-unique tree should not fail: %v", err)
	}
	v, _ := tree.Get(intKey(1))
	if v != "b" {
		t.Fatalf("got %q, want b", v)
	}
}

func TestCursorSeekPastEnd(t *testing.T) {
	tree := NewUnique[int](3)
	_ = tree.Insert(intKey(1), 1)

	c := tree.Cursor()
	defer c.Close()
	c.Seek(intKey(5))
	if c.Valid() {
		t.Fatal("expected cursor to be invalid past the last key")
	}
}
