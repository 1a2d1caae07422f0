// Package btree implements the ordered, range-scannable index that backs
// every table in txcore. It is a generalisation of a B+ tree keyed by a
// Comparable ordering token: leaves are linked for cheap forward range
// scans. Upsert holds the root node's latch for its whole descent and
// Remove holds the tree-wide lock, so writers on one tree run one at a
// time; nodes below the root are not latched by writers. Get takes no
// node latch, and a Cursor latches only the leaf it currently stands on,
// so readers are not excluded by writers inside this package.
package btree

import (
	"sync"
	"sync/atomic"
)

// Comparable is the ordering contract every key type must satisfy.
// Compare returns -1/0/1 the way bytes.Compare does.
type Comparable interface {
	Compare(other Comparable) int
}

// DuplicateKeyError is returned by Insert against a unique tree when the
// key is already present.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return "duplicate key violation: key " + e.Key + " already exists in unique index"
}

// BPlusTree is a key-ordered, range-scannable container mapping a
// Comparable key to a value of type V. mu guards the Root pointer and
// is held for the whole of Remove; Upsert releases it once it holds the
// root node's latch.
type BPlusTree[V any] struct {
	T      int
	Root   *Node[V]
	Unique bool
	mu     sync.RWMutex
	count  int64
}

// New creates a tree that allows Insert to silently overwrite an
// existing key.
func New[V any](t int) *BPlusTree[V] {
	return &BPlusTree[V]{T: t, Root: NewNode[V](t, true), Unique: false}
}

// NewUnique creates a tree that rejects Insert against an existing key.
func NewUnique[V any](t int) *BPlusTree[V] {
	return &BPlusTree[V]{T: t, Root: NewNode[V](t, true), Unique: true}
}

// Insert adds key/value, failing with DuplicateKeyError if the tree is
// unique and the key is already present.
func (b *BPlusTree[V]) Insert(key Comparable, value V) error {
	var createdNew bool
	err := b.Upsert(key, func(old V, exists bool) (V, error) {
		if exists && b.Unique {
			return old, &DuplicateKeyError{Key: keyString(key)}
		}
		createdNew = !exists
		return value, nil
	})
	if err == nil && createdNew {
		atomic.AddInt64(&b.count, 1)
	}
	return err
}

// Replace unconditionally sets key to value regardless of prior presence.
func (b *BPlusTree[V]) Replace(key Comparable, value V) error {
	return b.Upsert(key, func(old V, exists bool) (V, error) {
		return value, nil
	})
}

// Upsert runs fn against the current value for key (if any) while
// holding the leaf latch, and stores whatever fn returns.
func (b *BPlusTree[V]) Upsert(key Comparable, fn func(old V, exists bool) (V, error)) error {
	b.mu.Lock()
	root := b.Root
	root.Lock()

	if root.IsFull() {
		newRoot := NewNode[V](b.T, false)
		newRoot.Children = append(newRoot.Children, root)
		newRoot.SplitChild(0)
		b.Root = newRoot
		b.mu.Unlock()

		newRoot.Lock()
		root.Unlock()
		defer newRoot.Unlock()
		return newRoot.UpsertNonFull(key, fn)
	}

	b.mu.Unlock()
	defer root.Unlock()
	return root.UpsertNonFull(key, fn)
}

// Get performs a point lookup.
func (b *BPlusTree[V]) Get(key Comparable) (V, bool) {
	b.mu.RLock()
	root := b.Root
	b.mu.RUnlock()

	var zero V
	node, ok := root.Search(key)
	if !ok {
		return zero, false
	}
	for idx := 0; idx < node.N; idx++ {
		if node.Keys[idx].Compare(key) == 0 {
			return node.Values[idx], true
		}
	}
	return zero, false
}

// Remove deletes key, returning whether it was present.
func (b *BPlusTree[V]) Remove(key Comparable) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	root := b.Root
	removed := root.remove(key)

	if !root.Leaf && root.N == 0 {
		b.Root = root.Children[0]
	}
	if removed {
		atomic.AddInt64(&b.count, -1)
	}
	return removed
}

// Len reports the number of keys currently stored.
func (b *BPlusTree[V]) Len() int {
	return int(atomic.LoadInt64(&b.count))
}

// FindLeafLowerBound returns, with an RLock held on the returned leaf,
// the leaf and in-leaf index of the smallest key >= key. The caller MUST
// release the lock (Cursor.Close does this for you).
func (b *BPlusTree[V]) FindLeafLowerBound(key Comparable) (*Node[V], int) {
	b.mu.RLock()
	root := b.Root
	b.mu.RUnlock()

	if root == nil {
		return nil, 0
	}
	leaf, idx := root.findLeafLowerBound(key)
	leaf.RLock()
	return leaf, idx
}

// Range invokes fn for every key in the half-open interval [low, up) in
// ascending key order. fn returning false stops the scan early. up == nil
// means "no upper bound".
func (b *BPlusTree[V]) Range(low, up Comparable, fn func(key Comparable, value V) bool) {
	c := b.Cursor()
	defer c.Close()

	for c.Seek(low); c.Valid(); c.Next() {
		k := c.Key()
		if up != nil && k.Compare(up) >= 0 {
			return
		}
		if !fn(k, c.Value()) {
			return
		}
	}
}

// Ceiling returns the smallest key >= key, together with its value. The
// second bool result is false if the tree has no such key.
func (b *BPlusTree[V]) Ceiling(key Comparable) (Comparable, V, bool) {
	c := b.Cursor()
	defer c.Close()

	c.Seek(key)
	if !c.Valid() {
		var zero V
		return nil, zero, false
	}
	return c.Key(), c.Value(), true
}

func keyString(k Comparable) string {
	if s, ok := k.(interface{ String() string }); ok {
		return s.String()
	}
	return "?"
}
