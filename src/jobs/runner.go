package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"ptero-backup/src/config"
	"ptero-backup/src/dockerapi"
	"ptero-backup/src/pbs"
)

// DefaultStopTimeout bounds how long a backup waits for a graceful stop.
const DefaultStopTimeout = 2 * time.Minute

// Runner executes backup, restore, and list jobs. Scheduled and manual
// invocations share the same Runner so they also share the per-server locks.
type Runner struct {
	settings config.Settings
	runtime  dockerapi.Runtime
	store    pbs.Store
	locks    *LockRegistry
	logger   *zap.Logger

	// StopTimeout is the graceful-stop window for backups.
	StopTimeout time.Duration

	now func() time.Time
}

func NewRunner(settings config.Settings, runtime dockerapi.Runtime, store pbs.Store, logger *zap.Logger) *Runner {
	return &Runner{
		settings:    settings,
		runtime:     runtime,
		store:       store,
		locks:       NewLockRegistry(),
		logger:      logger,
		StopTimeout: DefaultStopTimeout,
		now:         time.Now,
	}
}

// Backup produces one backup of the server's data directory. When the
// shutdown policy applies (from the profile or forced by the caller) the
// workload is stopped first and restarted afterwards if it was running,
// whether or not the backup succeeded.
func (r *Runner) Backup(ctx context.Context, profile config.ServerProfile, forceShutdown bool) JobRecord {
	rec := JobRecord{ServerID: profile.ID, Kind: KindBackup, Start: r.now()}

	release, ok := r.locks.TryAcquire(profile.ID)
	if !ok {
		rec.Outcome = OutcomeSkipped
		r.finish(&rec)
		return rec
	}
	defer release()

	rec.Err = r.runBackup(ctx, profile, forceShutdown, &rec)
	if rec.Err != nil {
		rec.Outcome = OutcomeFailed
	} else {
		rec.Outcome = OutcomeSuccess
	}
	r.finish(&rec)
	return rec
}

func (r *Runner) runBackup(ctx context.Context, profile config.ServerProfile, forceShutdown bool, rec *JobRecord) error {
	dir, err := r.resolveDataDir(profile.ID)
	if err != nil {
		return err
	}

	if profile.Shutdown || forceShutdown {
		state, err := r.runtime.State(ctx, profile.ID)
		if err != nil {
			return &RuntimeQueryError{ServerID: profile.ID, Err: err}
		}
		if state == dockerapi.StateRunning {
			if err := r.runtime.Stop(ctx, profile.ID, r.StopTimeout); err != nil {
				return fmt.Errorf("backup aborted, stop failed: %w", err)
			}
			defer r.restartWorkload(ctx, profile.ID, rec)
		}
	}

	ref, err := r.store.Backup(ctx, pbs.BackupSpec{
		ServerID:  profile.ID,
		SourceDir: dir,
		Excludes:  profile.IgnorePaths,
	})
	if err != nil {
		return &BackupClientError{ServerID: profile.ID, Err: err}
	}
	rec.Snapshot = ref
	return nil
}

// Restore overwrites the server's data directory with the named snapshot.
// The workload is always quiesced first, regardless of the server's shutdown
// policy: overwriting files under an active workload is never safe.
func (r *Runner) Restore(ctx context.Context, serverID, snapshot string) JobRecord {
	rec := JobRecord{ServerID: serverID, Kind: KindRestore, Start: r.now()}

	release, ok := r.locks.TryAcquire(serverID)
	if !ok {
		rec.Outcome = OutcomeSkipped
		r.finish(&rec)
		return rec
	}
	defer release()

	rec.Err = r.runRestore(ctx, serverID, snapshot, &rec)
	if rec.Err != nil {
		rec.Outcome = OutcomeFailed
	} else {
		rec.Outcome = OutcomeSuccess
	}
	r.finish(&rec)
	return rec
}

func (r *Runner) runRestore(ctx context.Context, serverID, snapshot string, rec *JobRecord) error {
	dir, err := r.resolveDataDir(serverID)
	if err != nil {
		return err
	}

	state, err := r.runtime.State(ctx, serverID)
	if err != nil {
		return &RuntimeQueryError{ServerID: serverID, Err: err}
	}
	if state == dockerapi.StateRunning {
		if err := r.runtime.Kill(ctx, serverID); err != nil {
			return fmt.Errorf("restore aborted, workload could not be stopped: %w", err)
		}
		defer r.restartWorkload(ctx, serverID, rec)
	}

	// The workload is down; clear the data directory before extraction so
	// files deleted since the snapshot do not survive the restore.
	if err := clearDir(dir); err != nil {
		return err
	}

	if err := r.store.Restore(ctx, pbs.RestoreSpec{
		ServerID:  serverID,
		Snapshot:  snapshot,
		TargetDir: dir,
	}); err != nil {
		return &RestoreClientError{ServerID: serverID, Snapshot: snapshot, Err: err}
	}
	return nil
}

// ListSnapshots enumerates the snapshots recorded for the server. Pure
// query: no lifecycle calls, no per-server lock.
func (r *Runner) ListSnapshots(ctx context.Context, serverID string) ([]pbs.SnapshotRef, JobRecord) {
	rec := JobRecord{ServerID: serverID, Kind: KindList, Start: r.now()}
	refs, err := r.store.Snapshots(ctx, serverID)
	if err != nil {
		rec.Err = &ListClientError{ServerID: serverID, Err: err}
		rec.Outcome = OutcomeFailed
	} else {
		rec.Outcome = OutcomeSuccess
	}
	r.finish(&rec)
	return refs, rec
}

// restartWorkload restarts a workload that a job stopped. It runs on every
// exit path of the job and must not panic or propagate: a restart failure is
// logged but never masks the job's own outcome. The context is detached so a
// process shutdown racing the job cannot leave the workload stopped.
func (r *Runner) restartWorkload(ctx context.Context, serverID string, rec *JobRecord) {
	if err := r.runtime.Start(context.WithoutCancel(ctx), serverID); err != nil {
		rec.RestartErr = err
		r.logger.Error("failed to restart workload after job",
			zap.String("server", serverID),
			zap.String("kind", string(rec.Kind)),
			zap.Error(err))
	}
}

// resolveDataDir locates the server's data directory under the volumes root.
// Pterodactyl suffixes volume directories, so the id is matched as a prefix;
// zero or multiple matches are errors.
func (r *Runner) resolveDataDir(serverID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(r.settings.VolumesPath, serverID+"*"))
	if err != nil {
		return "", fmt.Errorf("resolve data directory for %s: %w", serverID, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no data directory found for server %s under %s", serverID, r.settings.VolumesPath)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("multiple data directories found for server %s: %v", serverID, matches)
	}
}

// clearDir removes the contents of dir but not dir itself.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read data directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("clear data directory %s: %w", dir, err)
		}
	}
	return nil
}

func (r *Runner) finish(rec *JobRecord) {
	rec.End = r.now()
	fields := []zap.Field{
		zap.String("server", rec.ServerID),
		zap.String("kind", string(rec.Kind)),
		zap.String("outcome", string(rec.Outcome)),
		zap.Duration("elapsed", rec.End.Sub(rec.Start)),
	}
	switch rec.Outcome {
	case OutcomeSuccess:
		if rec.Snapshot.Name != "" {
			fields = append(fields, zap.String("snapshot", rec.Snapshot.Name))
		}
		r.logger.Info("job finished", fields...)
	case OutcomeSkipped:
		r.logger.Warn("overlapping trigger skipped, previous job still running", fields...)
	default:
		r.logger.Error("job failed", append(fields, zap.Error(rec.Err))...)
	}
}
