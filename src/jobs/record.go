package jobs

import (
	"time"

	"ptero-backup/src/pbs"
)

// Kind names the operation a job performed.
type Kind string

const (
	KindBackup  Kind = "backup"
	KindRestore Kind = "restore"
	KindList    Kind = "list-snapshots"
)

// Outcome is the final disposition of a job.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	// OutcomeSkipped marks a trigger discarded because another job for the
	// same server was still in flight. It is informational, not an error.
	OutcomeSkipped Outcome = "skipped-overlap"
)

// JobRecord captures one job execution for logging. It is ephemeral and
// never persisted.
type JobRecord struct {
	ServerID string
	Kind     Kind
	Start    time.Time
	End      time.Time
	Outcome  Outcome
	Err      error
	Snapshot pbs.SnapshotRef

	// RestartErr is set when the post-job restart of a previously running
	// workload failed. It is logged loudly but never overrides Outcome.
	RestartErr error
}
