package errors

import (
	"testing"

	stderrors "github.com/cockroachdb/errors"
)

func TestErrors_ErrorMethod(t *testing.T) {
	errs := []error{
		&KeyNotFoundError{Table: "warehouse", Key: "1"},
		&KeyAlreadyExistsError{Table: "item", Key: "42"},
		&IntentConflictError{Table: "district", Key: "1,1", Existing: "DELETE", Attempt: "update"},
		&EmptyRangeError{Table: "customer_secondary", Key: "1,1,BARBAR"},
		&LockDeniedError{Table: "stock", Mode: "exclusive"},
	}

	for _, e := range errs {
		if e.Error() == "" {
			t.Errorf("Error() returned empty string for %T", e)
		}
	}
}

func TestErrors_SafeDetails(t *testing.T) {
	e := &KeyNotFoundError{Table: "warehouse", Key: "1"}
	details := e.SafeDetails()
	if len(details) != 2 || details[0] != "warehouse" || details[1] != "1" {
		t.Fatalf("SafeDetails() = %v, want [warehouse 1]", details)
	}
}

func TestAssertFatalIsAssertionFailure(t *testing.T) {
	err := AssertFatal("undefined record kind %q", "bogus")
	if !stderrors.HasAssertionFailure(err) {
		t.Fatalf("expected an assertion failure, got %v", err)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := &KeyNotFoundError{Table: "item", Key: "1"}
	wrapped := Wrap(cause, "looking up item %d", 1)

	var target *KeyNotFoundError
	if !stderrors.As(wrapped, &target) {
		t.Fatalf("expected wrapped error to unwrap to KeyNotFoundError, got %v", wrapped)
	}
}
