// Package errors carries the domain-miss error taxonomy from spec.md §7:
// named structs so callers can type-switch on a FAIL cause, wired on top
// of github.com/cockroachdb/errors so the same values also compose with
// Wrapf/Is/As and the AssertionFailedf helper used for §7's
// "programmer error" class.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// KeyNotFoundError: get/update/delete against an absent key.
type KeyNotFoundError struct {
	Table string
	Key   string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in table %q", e.Key, e.Table)
}

// SafeDetails satisfies cockroachdb/errors.SafeDetailer so this cause
// survives Wrapf/redaction without leaking Key/Table as unsafe payload.
func (e *KeyNotFoundError) SafeDetails() []string { return []string{e.Table, e.Key} }

// KeyAlreadyExistsError: insert against a key already present.
type KeyAlreadyExistsError struct {
	Table string
	Key   string
}

func (e *KeyAlreadyExistsError) Error() string {
	return fmt.Sprintf("key %q already exists in table %q", e.Key, e.Table)
}

func (e *KeyAlreadyExistsError) SafeDetails() []string { return []string{e.Table, e.Key} }

// IntentConflictError: a write-set operation that §4.4's composition
// table marks as a fail (double-insert, update/insert-after-delete, ...).
type IntentConflictError struct {
	Table    string
	Key      string
	Existing string
	Attempt  string
}

func (e *IntentConflictError) Error() string {
	return fmt.Sprintf("cannot %s key %q in table %q: already staged as %s",
		e.Attempt, e.Key, e.Table, e.Existing)
}

func (e *IntentConflictError) SafeDetails() []string {
	return []string{e.Table, e.Key, e.Existing, e.Attempt}
}

// EmptyRangeError: a secondary lookup (customer-by-last-name,
// order-by-customer-id) whose range held no entries.
type EmptyRangeError struct {
	Table string
	Key   string
}

func (e *EmptyRangeError) Error() string {
	return fmt.Sprintf("no entries for key %q in secondary index %q", e.Key, e.Table)
}

func (e *EmptyRangeError) SafeDetails() []string { return []string{e.Table, e.Key} }

// LockDeniedError: the no-wait table-level lock manager could not grant
// the requested lock immediately. Transaction operations translate this
// into Result ABORT, never FAIL.
type LockDeniedError struct {
	Table string
	Mode  string
}

func (e *LockDeniedError) Error() string {
	return fmt.Sprintf("could not acquire %s lock on table %q without waiting", e.Mode, e.Table)
}

func (e *LockDeniedError) SafeDetails() []string { return []string{e.Table, e.Mode} }

// AssertFatal reports a §7 "programmer error" (undefined record tag,
// corrupted write-set intent, nil payload on clear): these are bugs, not
// domain outcomes, and the process should not try to recover from them.
func AssertFatal(format string, args ...any) error {
	return errors.AssertionFailedf(format, args...)
}

// Wrap re-exports cockroachdb/errors.Wrapf so callers don't need a
// second import for the common "add context to a propagated error" case.
func Wrap(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}
