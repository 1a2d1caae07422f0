package txcore

// Result is the tri-valued outcome every Transaction operation returns,
// per spec.md §4.6 and §7.
type Result int

const (
	// Success means the operation completed as requested.
	Success Result = iota

	// Fail is a domain-level miss the caller may legitimately handle:
	// key not found, key already exists, an intent conflict in the
	// WriteSet, or an empty range on a secondary lookup.
	Fail

	// Abort is a system-imposed rollback — today only a denied
	// no-wait table lock. The caller MUST call Transaction.Abort and
	// retry with fresh state.
	Abort
)

func (r Result) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case Fail:
		return "FAIL"
	case Abort:
		return "ABORT"
	default:
		return "UNKNOWN"
	}
}
