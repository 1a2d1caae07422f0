package txcore

import (
	"sync"

	"github.com/tpcc-txcore/engine/config"
	"github.com/tpcc-txcore/engine/internal/metrics"
	"github.com/tpcc-txcore/engine/pkg/record"
)

// ConcurrencyManager grants a Transaction the isolation it needs for
// its lifetime — spec.md §4.5. Begin is called once, on construction;
// AcquireRead/AcquireWrite are consulted before every table touch;
// End releases whatever the transaction is holding, on any exit path.
type ConcurrencyManager interface {
	Begin() bool
	AcquireRead(table record.Kind) bool
	AcquireWrite(table record.Kind) bool
	End()
}

// NewConcurrencyManager selects an implementation from cfg.NumThreads
// and cfg.Mode. spec.md §4.5: a single-threaded configuration always
// gets SerialManager regardless of Mode, since there is no concurrent
// access to serialize against.
func NewConcurrencyManager(cfg config.Config) ConcurrencyManager {
	if cfg.NumThreads == 1 {
		return NewSerialManager()
	}
	switch cfg.Mode {
	case config.LockModeTableLock:
		return NewTableLockManager()
	default:
		return NewGlobalMutexManager()
	}
}

// SerialManager is the single-threaded no-op mode — spec.md §4.5
// "Serial mode: all lock operations are no-ops."
type SerialManager struct{}

func NewSerialManager() *SerialManager { return &SerialManager{} }

func (*SerialManager) Begin() bool                        { return true }
func (*SerialManager) AcquireRead(record.Kind) bool        { return true }
func (*SerialManager) AcquireWrite(record.Kind) bool       { return true }
func (*SerialManager) End()                                {}

// sharedGlobalMutex is the "single process-wide mutex" every
// GlobalMutexManager instance serializes through, per spec.md §4.5.
var sharedGlobalMutex sync.Mutex

// GlobalMutexManager is the default multi-threaded mode: one mutex
// acquired on Begin and released on End. All reads within the
// transaction observe a consistent snapshot because no other
// transaction's commit can interleave while the mutex is held.
type GlobalMutexManager struct {
	mu *sync.Mutex
}

func NewGlobalMutexManager() *GlobalMutexManager {
	return &GlobalMutexManager{mu: &sharedGlobalMutex}
}

func (m *GlobalMutexManager) Begin() bool {
	m.mu.Lock()
	return true
}

// AcquireRead/AcquireWrite are no-ops: Begin already serializes every
// transaction against every other one.
func (m *GlobalMutexManager) AcquireRead(record.Kind) bool  { return true }
func (m *GlobalMutexManager) AcquireWrite(record.Kind) bool { return true }

func (m *GlobalMutexManager) End() { m.mu.Unlock() }

// tableLockRegistry is the shared, process-wide set of per-table
// shared/exclusive locks spec.md §5 describes ("the per-table lock
// tables are shared"). One sync.RWMutex per table, created lazily.
type tableLockRegistry struct {
	mu     sync.Mutex
	tables map[record.Kind]*sync.RWMutex
}

func newTableLockRegistry() *tableLockRegistry {
	return &tableLockRegistry{tables: make(map[record.Kind]*sync.RWMutex)}
}

func (r *tableLockRegistry) lockFor(k record.Kind) *sync.RWMutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.tables[k]
	if !ok {
		l = &sync.RWMutex{}
		r.tables[k] = l
	}
	return l
}

var sharedTableLocks = newTableLockRegistry()

// TableLockManager is the optional finer-grained mode from spec.md
// §4.5: per-table slock()/xlock()/release() with a no-wait contract
// (return false rather than block on contention). Built on
// sync.RWMutex.TryLock/TryRLock, which give true non-blocking
// acquisition — unlike the original's apparently-inverted call sites
// (spec.md §9's open question), this treats "return false -> caller
// aborts" as authoritative.
type TableLockManager struct {
	registry  *tableLockRegistry
	heldRead  map[record.Kind]bool
	heldWrite map[record.Kind]bool
}

func NewTableLockManager() *TableLockManager {
	return &TableLockManager{
		registry:  sharedTableLocks,
		heldRead:  make(map[record.Kind]bool),
		heldWrite: make(map[record.Kind]bool),
	}
}

func (m *TableLockManager) Begin() bool { return true }

// AcquireRead is slock(): any number of readers admitted while no
// writer holds the table.
func (m *TableLockManager) AcquireRead(table record.Kind) bool {
	if m.heldRead[table] || m.heldWrite[table] {
		return true
	}
	ok := m.registry.lockFor(table).TryRLock()
	if ok {
		m.heldRead[table] = true
	} else {
		metrics.LockDenied.WithLabelValues(table.String(), "shared").Inc()
	}
	return ok
}

// AcquireWrite is xlock(): exactly one writer admitted, and only when
// no reader or other writer holds the table. Lock upgrade (read
// already held, write requested) is not supported under a no-wait
// contract and is denied rather than risk a deadlock.
func (m *TableLockManager) AcquireWrite(table record.Kind) bool {
	if m.heldWrite[table] {
		return true
	}
	if m.heldRead[table] {
		metrics.LockDenied.WithLabelValues(table.String(), "exclusive").Inc()
		return false
	}
	ok := m.registry.lockFor(table).TryLock()
	if ok {
		m.heldWrite[table] = true
	} else {
		metrics.LockDenied.WithLabelValues(table.String(), "exclusive").Inc()
	}
	return ok
}

// End is release(): undoes whatever this transaction took.
func (m *TableLockManager) End() {
	for table, held := range m.heldWrite {
		if held {
			m.registry.lockFor(table).Unlock()
		}
	}
	for table, held := range m.heldRead {
		if held {
			m.registry.lockFor(table).RUnlock()
		}
	}
	m.heldRead = make(map[record.Kind]bool)
	m.heldWrite = make(map[record.Kind]bool)
}
