package txcore

import (
	"sync"

	"github.com/tpcc-txcore/engine/pkg/record"
)

// HistoryLog is the append-only, keyless store behind spec.md §3's
// History table. The original models it as a C++ thread_local deque;
// Go has no language-level thread-local storage, so this core makes
// the same "one log per worker" scoping explicit instead of faking it:
// callers obtain their own HistoryLog via Database.HistoryFor(worker)
// and keep using that handle for the lifetime of the goroutine. No
// cross-worker aggregation happens here, matching the design note in
// spec.md §9.
type HistoryLog struct {
	mu      sync.Mutex
	entries []record.History
}

// Append adds rec. Never fails, per spec.md §4.2 history_append.
func (h *HistoryLog) Append(rec record.History) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, rec)
}

// Entries returns a copy of everything appended so far.
func (h *HistoryLog) Entries() []record.History {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]record.History, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len reports how many entries have been appended.
func (h *HistoryLog) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
