package txcore

import (
	"github.com/tpcc-txcore/engine/internal/metrics"
	"github.com/tpcc-txcore/engine/pkg/btree"
	"github.com/tpcc-txcore/engine/pkg/record"
)

// treeOrder is the B+ tree fanout (the "t" parameter, minimum degree)
// used for every table and index in Database. 64 keeps internal node
// fan-out wide relative to the TPC-C row counts this core is sized for.
const treeOrder = 64

// Table is a typed, ordered container over one B+ tree: the generic
// shape behind every primary table and secondary index in Database.
// Values are stored by Go value (not pointer), so Get's struct copy IS
// the deep copy spec.md §4.2 requires — record.Warehouse and friends
// hold only strings, decimal.Decimal and time.Time, all of which are
// safe to alias-copy because their APIs never mutate in place.
type Table[K btree.Comparable, V any] struct {
	tree *btree.BPlusTree[V]
	kind record.Kind
}

func newTable[K btree.Comparable, V any](unique bool, kind record.Kind) *Table[K, V] {
	if unique {
		return &Table[K, V]{tree: btree.NewUnique[V](treeOrder), kind: kind}
	}
	return &Table[K, V]{tree: btree.New[V](treeOrder), kind: kind}
}

// Lookup reports presence without copying the value.
func (t *Table[K, V]) Lookup(key K) bool {
	_, ok := t.tree.Get(key)
	return ok
}

// Get returns a deep copy of the stored value, per spec.md §4.2.
func (t *Table[K, V]) Get(key K) (V, bool) {
	return t.tree.Get(key)
}

// Insert adds key/value, failing if key is already present (on a
// unique tree) — spec.md §4.2 insert(). Every successful insert updates
// this table's live TableSize gauge.
func (t *Table[K, V]) Insert(key K, value V) bool {
	if t.tree.Insert(key, value) != nil {
		return false
	}
	metrics.TableSize.WithLabelValues(t.kind.String()).Set(float64(t.tree.Len()))
	return true
}

// Replace overwrites key's value in place, failing if key is absent —
// spec.md §4.2 update().
func (t *Table[K, V]) Replace(key K, value V) bool {
	if _, ok := t.tree.Get(key); !ok {
		return false
	}
	_ = t.tree.Replace(key, value)
	return true
}

// Delete removes key, reporting whether it was present, and keeps
// TableSize in step with the removal.
func (t *Table[K, V]) Delete(key K) bool {
	if !t.tree.Remove(key) {
		return false
	}
	metrics.TableSize.WithLabelValues(t.kind.String()).Set(float64(t.tree.Len()))
	return true
}

// Len reports the current number of rows.
func (t *Table[K, V]) Len() int {
	return t.tree.Len()
}

// Ceiling returns the smallest key >= key together with its value.
func (t *Table[K, V]) Ceiling(key K) (K, V, bool) {
	k, v, ok := t.tree.Ceiling(key)
	if !ok {
		var zero K
		return zero, v, false
	}
	return k.(K), v, true
}

// RangeIter visits every record in [low, up) in ascending key order.
// up == nil means unbounded.
func (t *Table[K, V]) RangeIter(low K, up *K, fn func(key K, value V) bool) {
	var upC btree.Comparable
	if up != nil {
		upC = *up
	}
	t.tree.Range(low, upC, func(k btree.Comparable, v V) bool {
		return fn(k.(K), v)
	})
}
