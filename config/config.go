// Package config holds the process-wide knobs for the storage engine:
// how many warehouses the schema is populated for, how many worker
// goroutines drive transactions concurrently, and which concurrency
// manager backs them. Grounded on pkg/wal/options.go's plain-struct
// Options/DefaultOptions shape from the teacher repo.
package config

import "github.com/cockroachdb/errors"

// LockMode selects the ConcurrencyManager implementation (spec.md §5).
type LockMode int

const (
	// LockModeSerial runs with no locking at all; valid only with a
	// single worker goroutine.
	LockModeSerial LockMode = iota

	// LockModeGlobalMutex serializes every transaction behind one
	// process-wide mutex. The default multi-threaded mode.
	LockModeGlobalMutex

	// LockModeTableLock replaces the global mutex with optional
	// per-table shared/exclusive no-wait locking.
	LockModeTableLock
)

func (m LockMode) String() string {
	switch m {
	case LockModeSerial:
		return "serial"
	case LockModeGlobalMutex:
		return "global-mutex"
	case LockModeTableLock:
		return "table-lock"
	default:
		return "unknown"
	}
}

// Config configures a Database/ConcurrencyManager pair.
type Config struct {
	// NumWarehouses bounds the TPC-C schema's w_id range; callers
	// populate [1, NumWarehouses].
	NumWarehouses int

	// NumThreads is the number of goroutines expected to drive
	// transactions concurrently. NumThreads == 1 permits LockModeSerial.
	NumThreads int

	// Mode selects the ConcurrencyManager implementation.
	Mode LockMode

	// RecordCacheBound bounds each per-kind record allocator free
	// list (pkg/cache). Zero means the package default.
	RecordCacheBound int
}

// DefaultConfig mirrors DefaultOptions from the teacher's wal package:
// a safe, ready-to-run configuration for multi-threaded use.
func DefaultConfig() Config {
	return Config{
		NumWarehouses:    1,
		NumThreads:       4,
		Mode:             LockModeGlobalMutex,
		RecordCacheBound: 30,
	}
}

// Validate rejects configurations the rest of the package cannot honor.
func (c Config) Validate() error {
	if c.NumWarehouses < 1 {
		return errors.Newf("config: NumWarehouses must be >= 1, got %d", c.NumWarehouses)
	}
	if c.NumThreads < 1 {
		return errors.Newf("config: NumThreads must be >= 1, got %d", c.NumThreads)
	}
	if c.Mode == LockModeSerial && c.NumThreads != 1 {
		return errors.Newf("config: LockModeSerial requires NumThreads == 1, got %d", c.NumThreads)
	}
	return nil
}
