package txcore

import (
	txerrors "github.com/tpcc-txcore/engine/pkg/errors"
)

// This file holds the generic operation bodies shared by every
// per-record-type Transaction method in transaction.go. Keeping the
// logic here once, and instantiating it per concrete (K, T) pair at
// each call site, is what spec.md §9 asks for: dispatch stays static
// and monomorphic (resolved at compile time by the Go generics
// instantiation), never centralised through a runtime type switch or
// reflection.
//
// Each op also returns the pkg/errors cause behind a FAIL, so
// transaction.go's call sites can stash it on Transaction.lastErr for
// LastError(). table is the owning record kind's name
// (record.Kind.String()); it only ever feeds an error's Table field.

// txGet implements spec.md §4.6 get(): the write-set is consulted
// first (read-your-own-writes), falling back to the committed table.
func txGet[K Key, T any](ws *writeSetTable[K, T], tbl *Table[K, T], table string, key K) (T, Result, error) {
	if payload, staged, deleted := ws.get(key); staged {
		if deleted {
			var zero T
			return zero, Fail, &txerrors.KeyNotFoundError{Table: table, Key: key.String()}
		}
		return payload, Success, nil
	}
	if v, ok := tbl.Get(key); ok {
		return v, Success, nil
	}
	var zero T
	return zero, Fail, &txerrors.KeyNotFoundError{Table: table, Key: key.String()}
}

// txPrepareForInsert implements spec.md §4.6 prepare_record_for_insert().
func txPrepareForInsert[K Key, T any](ws *writeSetTable[K, T], tbl *Table[K, T], table string, key K) (*T, Result, error) {
	payload, ok := ws.prepareForInsert(tbl.Lookup(key), key)
	if ok {
		return payload, Success, nil
	}
	if intent, staged := ws.peek(key); staged {
		return nil, Fail, &txerrors.IntentConflictError{
			Table: table, Key: key.String(), Existing: intent.String(), Attempt: intentInsert.String(),
		}
	}
	return nil, Fail, &txerrors.KeyAlreadyExistsError{Table: table, Key: key.String()}
}

// txPrepareForUpdate implements spec.md §4.6 prepare_record_for_update().
func txPrepareForUpdate[K Key, T any](ws *writeSetTable[K, T], tbl *Table[K, T], table string, key K) (*T, Result, error) {
	payload, ok := ws.prepareForUpdate(func() (T, bool) { return tbl.Get(key) }, key)
	if ok {
		return payload, Success, nil
	}
	if intent, staged := ws.peek(key); staged {
		return nil, Fail, &txerrors.IntentConflictError{
			Table: table, Key: key.String(), Existing: intent.String(), Attempt: intentUpdate.String(),
		}
	}
	return nil, Fail, &txerrors.KeyNotFoundError{Table: table, Key: key.String()}
}

// txDelete implements spec.md §4.6 delete_record().
func txDelete[K Key, T any](ws *writeSetTable[K, T], tbl *Table[K, T], table string, key K) (Result, error) {
	if ws.delete(tbl.Lookup(key), key) {
		return Success, nil
	}
	if intent, staged := ws.peek(key); staged {
		return Fail, &txerrors.IntentConflictError{
			Table: table, Key: key.String(), Existing: intent.String(), Attempt: intentDelete.String(),
		}
	}
	return Fail, &txerrors.KeyNotFoundError{Table: table, Key: key.String()}
}

// txRangeQuery implements spec.md §4.6 range_query<T>(): f observes
// deep copies straight from the committed table. up == nil scans to
// the end of the table.
func txRangeQuery[K Key, T any](tbl *Table[K, T], low K, up *K, f func(T)) Result {
	tbl.RangeIter(low, up, func(_ K, v T) bool {
		f(v)
		return true
	})
	return Success
}

// txRangeUpdate implements spec.md §4.6 range_update<T>(): every key
// in [low, up) is first promoted into the write-set as UPDATE, then f
// is invoked against the staged payload only. Keys are collected
// before staging begins so f's mutations (which never touch the
// committed table directly) cannot perturb the scan in progress.
func txRangeUpdate[K Key, T any](ws *writeSetTable[K, T], tbl *Table[K, T], low K, up *K, f func(*T)) Result {
	var keys []K
	tbl.RangeIter(low, up, func(k K, _ T) bool {
		keys = append(keys, k)
		return true
	})
	for _, key := range keys {
		k := key
		payload, ok := ws.prepareForUpdate(func() (T, bool) { return tbl.Get(k) }, k)
		if ok {
			f(payload)
		}
	}
	return Success
}

// applyIntent replays one staged write-set entry into the committed
// table at commit time — spec.md §4.4's "apply-to-database" dispatch.
func applyIntent[K Key, T any](intent Intent, key K, payload T, insert, replace func(K, T) bool, del func(K) bool) {
	switch intent {
	case intentInsert:
		insert(key, payload)
	case intentUpdate:
		replace(key, payload)
	case intentDelete:
		del(key)
	}
}
