package pbs

import (
	"context"
	"sync"
)

// FakeStore is an in-memory Store implementation for unit tests.
type FakeStore struct {
	mu       sync.Mutex
	Backups  []BackupSpec
	Restores []RestoreSpec
	Snaps    map[string][]SnapshotRef

	BackupErr  error
	RestoreErr error
	ListErr    error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{Snaps: map[string][]SnapshotRef{}}
}

func (f *FakeStore) Backup(ctx context.Context, spec BackupSpec) (SnapshotRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Backups = append(f.Backups, spec)
	if f.BackupErr != nil {
		return SnapshotRef{}, f.BackupErr
	}
	ref := SnapshotRef{BackupID: spec.ServerID, Name: "host/" + spec.ServerID + "/fake"}
	f.Snaps[spec.ServerID] = append(f.Snaps[spec.ServerID], ref)
	return ref, nil
}

func (f *FakeStore) Restore(ctx context.Context, spec RestoreSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Restores = append(f.Restores, spec)
	return f.RestoreErr
}

func (f *FakeStore) Snapshots(ctx context.Context, serverID string) ([]SnapshotRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Snaps[serverID], nil
}
