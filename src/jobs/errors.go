package jobs

import "fmt"

// RuntimeQueryError indicates the container runtime could not report a
// server's state. The job aborts before touching data: the state cannot be
// safely assumed.
type RuntimeQueryError struct {
	ServerID string
	Err      error
}

func (e *RuntimeQueryError) Error() string {
	return fmt.Sprintf("cannot determine state of server %s: %v", e.ServerID, e.Err)
}

func (e *RuntimeQueryError) Unwrap() error { return e.Err }

// BackupClientError wraps a failed external backup invocation. There is no
// retry within the job; the next scheduled run tries again.
type BackupClientError struct {
	ServerID string
	Err      error
}

func (e *BackupClientError) Error() string {
	return fmt.Sprintf("backup client failed for server %s: %v", e.ServerID, e.Err)
}

func (e *BackupClientError) Unwrap() error { return e.Err }

// RestoreClientError wraps a failed external restore invocation.
type RestoreClientError struct {
	ServerID string
	Snapshot string
	Err      error
}

func (e *RestoreClientError) Error() string {
	return fmt.Sprintf("restore client failed for server %s snapshot %s: %v", e.ServerID, e.Snapshot, e.Err)
}

func (e *RestoreClientError) Unwrap() error { return e.Err }

// ListClientError wraps a failed external snapshot listing.
type ListClientError struct {
	ServerID string
	Err      error
}

func (e *ListClientError) Error() string {
	return fmt.Sprintf("listing snapshots failed for server %s: %v", e.ServerID, e.Err)
}

func (e *ListClientError) Unwrap() error { return e.Err }
