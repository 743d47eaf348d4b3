package pbs

import (
	"context"
	"time"
)

// SnapshotRef identifies one snapshot in the remote store. Snapshots are
// immutable once created; this tool deliberately has no way to delete them.
type SnapshotRef struct {
	BackupID string
	Time     time.Time
	Name     string // host/<backup-id>/<RFC3339 time>, the PBS snapshot path
}

// BackupSpec describes one backup invocation.
type BackupSpec struct {
	ServerID  string
	SourceDir string
	Excludes  []string // relative to SourceDir
}

// RestoreSpec describes one restore invocation.
type RestoreSpec struct {
	ServerID  string
	Snapshot  string
	TargetDir string
}

// Store is the narrow surface of the remote backup store used by jobs.
type Store interface {
	Backup(ctx context.Context, spec BackupSpec) (SnapshotRef, error)
	Restore(ctx context.Context, spec RestoreSpec) error
	Snapshots(ctx context.Context, serverID string) ([]SnapshotRef, error)
}

// SnapshotName renders the canonical PBS snapshot path for a backup id and
// backup time.
func SnapshotName(backupID string, t time.Time) string {
	return "host/" + backupID + "/" + t.UTC().Format(time.RFC3339)
}
