package dump

// Target is the MySQL version the dump is destined for, controlling
// whether secondary indexes and foreign keys are deferred.
type Target string

const (
	Target55 Target = "5.5"
	Target56 Target = "5.6"
	Target57 Target = "5.7"
)

// Deferrals reports whether secondary indexes and FK constraints should
// be deferred to a trailing ALTER TABLE for this target, and whether the
// target was recognized at all (an unknown target disables both and is
// reported as a warning by the caller).
func Deferrals(target Target) (indexes, constraints, known bool) {
	switch target {
	case Target55:
		return true, false, true
	case Target56, Target57:
		return true, true, true
	default:
		return false, false, false
	}
}

// SplitterState carries every piece of state the source threads through
// module-level globals: the captured dump header, the current database,
// a pending deferred ALTER waiting for its table's data section, and
// running counters. It is driver-scoped and passed explicitly rather
// than mutated through package-level variables.
type SplitterState struct {
	Header             []string
	CurrentDB          string
	PendingAlterTable  string
	PendingAlter       string
	DatabaseCount      int
	TableCount         int
	ViewCount          int
	viewsFileTruncated map[string]bool
}

// NewSplitterState returns a zero-valued SplitterState ready for a fresh
// run.
func NewSplitterState() *SplitterState {
	return &SplitterState{viewsFileTruncated: make(map[string]bool)}
}

// NeedsViewsTruncation reports whether path (a views.sql output path)
// has not yet been written this run, and marks it written. Truncation
// is tracked per output path rather than globally — see DESIGN.md for
// why this departs from the source's apparent single-flag behavior,
// which would misbehave on multi-database dumps.
func (s *SplitterState) NeedsViewsTruncation(path string) bool {
	if s.viewsFileTruncated[path] {
		return false
	}
	s.viewsFileTruncated[path] = true
	return true
}
