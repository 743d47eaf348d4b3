package pbs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Client drives the proxmox-backup-client binary against one repository and
// namespace. The access key is passed to the child process environment only,
// never on the command line.
type Client struct {
	bin        BinaryInfo
	repository string
	namespace  string
	key        string
	now        func() time.Time
}

// NewClient builds an exec-backed Store.
func NewClient(bin BinaryInfo, repository, namespace, key string) *Client {
	return &Client{
		bin:        bin,
		repository: repository,
		namespace:  namespace,
		key:        key,
		now:        time.Now,
	}
}

// Backup archives the source directory as <server-id>.pxar under the
// configured namespace. The returned SnapshotRef is derived from the backup
// start time, matching the snapshot path PBS records.
func (c *Client) Backup(ctx context.Context, spec BackupSpec) (SnapshotRef, error) {
	started := c.now().UTC().Truncate(time.Second)
	args := backupArgs(c.repository, c.namespace, spec)
	if _, stderr, err := c.run(ctx, args); err != nil {
		return SnapshotRef{}, fmt.Errorf("%s: backup %s: %w: %s", binaryName, spec.ServerID, err, strings.TrimSpace(stderr))
	}
	return SnapshotRef{
		BackupID: spec.ServerID,
		Time:     started,
		Name:     SnapshotName(spec.ServerID, started),
	}, nil
}

// Restore extracts the named snapshot's archive into the target directory.
func (c *Client) Restore(ctx context.Context, spec RestoreSpec) error {
	args := restoreArgs(c.repository, c.namespace, spec)
	if _, stderr, err := c.run(ctx, args); err != nil {
		return fmt.Errorf("%s: restore %s for %s: %w: %s", binaryName, spec.Snapshot, spec.ServerID, err, strings.TrimSpace(stderr))
	}
	return nil
}

// Snapshots lists the snapshots recorded for the given server id in the
// configured namespace, oldest first.
func (c *Client) Snapshots(ctx context.Context, serverID string) ([]SnapshotRef, error) {
	args := snapshotsArgs(c.repository, c.namespace)
	stdout, stderr, err := c.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("%s: list snapshots: %w: %s", binaryName, err, strings.TrimSpace(stderr))
	}
	refs, err := parseSnapshots([]byte(stdout), serverID)
	if err != nil {
		return nil, fmt.Errorf("%s: parse snapshots output: %w", binaryName, err)
	}
	return refs, nil
}

func backupArgs(repository, namespace string, spec BackupSpec) []string {
	args := []string{
		"backup", spec.ServerID + ".pxar:" + spec.SourceDir,
		"--repository", repository,
		"--ns", namespace,
		"--backup-type", "host",
		"--change-detection-mode", "metadata",
		"--backup-id", spec.ServerID,
	}
	for _, rel := range spec.Excludes {
		args = append(args, "--exclude", filepath.Join(spec.SourceDir, rel))
	}
	return args
}

func restoreArgs(repository, namespace string, spec RestoreSpec) []string {
	return []string{
		"restore", spec.Snapshot, spec.ServerID + ".ppxar", spec.TargetDir,
		"--repository", repository,
		"--ns", namespace,
	}
}

func snapshotsArgs(repository, namespace string) []string {
	return []string{
		"snapshots",
		"--repository", repository,
		"--ns", namespace,
		"--output-format", "json",
	}
}

// pbsSnapshot mirrors one entry of `snapshots --output-format json`.
type pbsSnapshot struct {
	BackupType string `json:"backup-type"`
	BackupID   string `json:"backup-id"`
	BackupTime int64  `json:"backup-time"`
}

func parseSnapshots(out []byte, serverID string) ([]SnapshotRef, error) {
	var snaps []pbsSnapshot
	if err := json.Unmarshal(out, &snaps); err != nil {
		return nil, err
	}
	var refs []SnapshotRef
	for _, snap := range snaps {
		if snap.BackupID != serverID {
			continue
		}
		t := time.Unix(snap.BackupTime, 0).UTC()
		refs = append(refs, SnapshotRef{
			BackupID: snap.BackupID,
			Time:     t,
			Name:     SnapshotName(snap.BackupID, t),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Time.Before(refs[j].Time) })
	return refs, nil
}

// run executes the client with the repository key in its environment. No
// timeout is imposed on backup or restore; the external tool is trusted to
// terminate.
func (c *Client) run(ctx context.Context, args []string) (string, string, error) {
	cmd := exec.CommandContext(ctx, c.bin.Path, args...)
	cmd.Env = append(os.Environ(), "PBS_PASSWORD="+c.key)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	err := cmd.Run()
	return stdoutBuf.String(), stderrBuf.String(), err
}
