package txcore

import (
	"sort"

	"github.com/tpcc-txcore/engine/pkg/btree"
	"github.com/tpcc-txcore/engine/pkg/cache"
)

// Intent is the staged operation kind a WriteSet entry carries.
type Intent int

const (
	intentInsert Intent = iota
	intentUpdate
	intentDelete
)

func (i Intent) String() string {
	switch i {
	case intentInsert:
		return "INSERT"
	case intentUpdate:
		return "UPDATE"
	case intentDelete:
		return "DELETE"
	default:
		return "?"
	}
}

// Key is the constraint every WriteSet table key type satisfies: it is
// both a Go map key (plain comparable struct of fixed-width fields) and
// an ordering token, so apply-to-database can replay entries in key
// order per spec.md §4.4. String lets ops.go attach a human-readable
// key to a FAIL cause without a type switch over all eleven key types.
type Key interface {
	comparable
	Compare(other btree.Comparable) int
	String() string
}

type logEntry[T any] struct {
	intent  Intent
	payload *T
}

// writeSetTable is one per-record-type staging container — spec.md
// §4.4's "one staging container per record type, same key as the
// corresponding table". Payloads are allocated from pool (pkg/cache),
// the same bounded free-list pattern spec.md §4.3 describes, and
// released back to it on delete/clear/abort.
type writeSetTable[K Key, T any] struct {
	entries map[K]*logEntry[T]
	pool    *cache.RecordCache[T]
}

func newWriteSetTable[K Key, T any](pool *cache.RecordCache[T]) *writeSetTable[K, T] {
	return &writeSetTable[K, T]{entries: make(map[K]*logEntry[T]), pool: pool}
}

// get implements read-your-own-writes. The second bool reports whether
// a write-set entry exists at all; the third reports whether that
// entry is a staged DELETE (the caller must treat this as FAIL,
// regardless of what the committed table says).
func (w *writeSetTable[K, T]) get(key K) (payload T, staged bool, deleted bool) {
	e, ok := w.entries[key]
	if !ok {
		return payload, false, false
	}
	if e.intent == intentDelete {
		return payload, true, true
	}
	return *e.payload, true, false
}

// peek reports the staged intent for key without mutating anything —
// used by ops.go to classify a FAIL cause after prepareForInsert,
// prepareForUpdate, or delete has already returned false.
func (w *writeSetTable[K, T]) peek(key K) (intent Intent, staged bool) {
	e, ok := w.entries[key]
	if !ok {
		return 0, false
	}
	return e.intent, true
}

// prepareForInsert stages an INSERT slot. existsInDB reflects the
// committed table. Implements the "(no prior) insert", "INSERT
// insert"/"UPDATE insert" (fail), and "DELETE insert" (-> UPDATE) rows
// of spec.md §4.4's intent table.
func (w *writeSetTable[K, T]) prepareForInsert(existsInDB bool, key K) (*T, bool) {
	e, ok := w.entries[key]
	if !ok {
		if existsInDB {
			return nil, false
		}
		payload := w.pool.Allocate()
		var zero T
		*payload = zero
		w.entries[key] = &logEntry[T]{intent: intentInsert, payload: payload}
		return payload, true
	}

	switch e.intent {
	case intentDelete:
		e.intent = intentUpdate
		e.payload = w.pool.Allocate()
		var zero T
		*e.payload = zero
		return e.payload, true
	default: // intentInsert, intentUpdate: already staged -> fail
		return nil, false
	}
}

// prepareForUpdate stages/returns an UPDATE slot. dbGet supplies the
// committed copy the first time a key is touched — spec.md §4.4's
// read-your-own-writes paragraph.
func (w *writeSetTable[K, T]) prepareForUpdate(dbGet func() (T, bool), key K) (*T, bool) {
	e, ok := w.entries[key]
	if !ok {
		base, present := dbGet()
		if !present {
			return nil, false
		}
		payload := w.pool.Allocate()
		*payload = base
		w.entries[key] = &logEntry[T]{intent: intentUpdate, payload: payload}
		return payload, true
	}

	switch e.intent {
	case intentInsert, intentUpdate:
		return e.payload, true
	default: // intentDelete
		return nil, false
	}
}

// delete stages a DELETE intent. dbHas reflects the committed table.
func (w *writeSetTable[K, T]) delete(dbHas bool, key K) bool {
	e, ok := w.entries[key]
	if !ok {
		if !dbHas {
			return false
		}
		w.entries[key] = &logEntry[T]{intent: intentDelete, payload: nil}
		return true
	}

	switch e.intent {
	case intentInsert:
		w.pool.Deallocate(e.payload)
		delete(w.entries, key)
		return true
	case intentUpdate:
		w.pool.Deallocate(e.payload)
		e.payload = nil
		e.intent = intentDelete
		return true
	default: // already DELETE
		return false
	}
}

// applyToDatabase replays every staged entry, in ascending key order,
// through apply.
func (w *writeSetTable[K, T]) applyToDatabase(apply func(intent Intent, key K, payload T)) {
	if len(w.entries) == 0 {
		return
	}
	keys := make([]K, 0, len(w.entries))
	for k := range w.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	for _, k := range keys {
		e := w.entries[k]
		var payload T
		if e.payload != nil {
			payload = *e.payload
		}
		apply(e.intent, k, payload)
	}
}

// clear deallocates every staged payload and empties the container —
// used both by a successful commit's drain and by abort.
func (w *writeSetTable[K, T]) clear() {
	for _, e := range w.entries {
		if e.payload != nil {
			w.pool.Deallocate(e.payload)
		}
	}
	w.entries = make(map[K]*logEntry[T])
}
