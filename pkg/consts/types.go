package consts

import "time"

// RunMode is the operating profile of the supervised node. It controls the
// sync strategy and how much historical chain state the node retains.
type RunMode string

const (
	ModeLite    RunMode = "lite"
	ModeFull    RunMode = "full"
	ModeArchive RunMode = "archive"
	ModeUnknown RunMode = "unknown" // no mode file on disk
)

// Valid reports whether m is one of the selectable run modes.
// ModeUnknown is a derived placeholder, never a valid selection.
func (m RunMode) Valid() bool {
	switch m {
	case ModeLite, ModeFull, ModeArchive:
		return true
	}
	return false
}

// Sync returns the initial synchronization strategy for the mode.
// Lite nodes warp-sync; full and archive nodes replay the whole chain.
func (m RunMode) Sync() SyncStrategy {
	if m == ModeLite {
		return SyncWarp
	}
	return SyncFull
}

// SyncStrategy selects how the node performs its initial synchronization.
type SyncStrategy string

const (
	SyncWarp SyncStrategy = "warp"
	SyncFull SyncStrategy = "full"
)

// PruningArchive is the pruning token that retains all historical state.
const PruningArchive = "archive"

// ProcessState is the supervisor's view of the node process lifecycle.
// STALE is transient: it is detected lazily whenever a bookkeeping file
// names a dead process, and resolves immediately to ABSENT by deleting
// the file.
type ProcessState string

const (
	StateAbsent   ProcessState = "ABSENT"
	StateStarting ProcessState = "STARTING"
	StateRunning  ProcessState = "RUNNING"
	StateStopping ProcessState = "STOPPING"
	StateStale    ProcessState = "STALE"
)

const (
	// DefaultRetention is the block-retention count offered when the
	// operator does not supply one for lite or full mode.
	DefaultRetention = 7200

	// StatusTailLines is how much of the log status() echoes back.
	StatusTailLines = 10

	// DefaultViewLines is the view_logs fallback when the requested line
	// count is blank or not a positive integer.
	DefaultViewLines = 100

	DefaultGracePeriod  = 3 * time.Second
	DefaultStopInterval = time.Second
	DefaultStopAttempts = 10
	DefaultWatchPeriod  = 5 * time.Second
)
