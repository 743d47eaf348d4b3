package pbs

import (
	"reflect"
	"testing"
	"time"
)

func TestBackupArgs_WithExcludes(t *testing.T) {
	spec := BackupSpec{
		ServerID:  "abc123",
		SourceDir: "/volumes/abc123",
		Excludes:  []string{"cache", "logs/latest"},
	}
	got := backupArgs("user@pbs@host:store", "ptero", spec)
	want := []string{
		"backup", "abc123.pxar:/volumes/abc123",
		"--repository", "user@pbs@host:store",
		"--ns", "ptero",
		"--backup-type", "host",
		"--change-detection-mode", "metadata",
		"--backup-id", "abc123",
		"--exclude", "/volumes/abc123/cache",
		"--exclude", "/volumes/abc123/logs/latest",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("backup args mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestBackupArgs_NoExcludes(t *testing.T) {
	got := backupArgs("r", "n", BackupSpec{ServerID: "xyz", SourceDir: "/v/xyz"})
	for _, arg := range got {
		if arg == "--exclude" {
			t.Fatalf("unexpected --exclude in %v", got)
		}
	}
}

func TestRestoreArgs(t *testing.T) {
	spec := RestoreSpec{
		ServerID:  "abc123",
		Snapshot:  "host/abc123/2025-06-01T04:00:00Z",
		TargetDir: "/volumes/abc123",
	}
	got := restoreArgs("r", "n", spec)
	want := []string{
		"restore", "host/abc123/2025-06-01T04:00:00Z", "abc123.ppxar", "/volumes/abc123",
		"--repository", "r",
		"--ns", "n",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("restore args mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestSnapshotsArgs(t *testing.T) {
	got := snapshotsArgs("r", "n")
	want := []string{"snapshots", "--repository", "r", "--ns", "n", "--output-format", "json"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshots args mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestParseSnapshots_FiltersAndSorts(t *testing.T) {
	out := []byte(`[
		{"backup-type":"host","backup-id":"abc123","backup-time":1717214400},
		{"backup-type":"host","backup-id":"other","backup-time":1717214400},
		{"backup-type":"host","backup-id":"abc123","backup-time":1717128000}
	]`)
	refs, err := parseSnapshots(out, "abc123")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if !refs[0].Time.Before(refs[1].Time) {
		t.Fatalf("refs not sorted oldest first: %v", refs)
	}
	want := SnapshotName("abc123", time.Unix(1717128000, 0))
	if refs[0].Name != want {
		t.Fatalf("unexpected name %q, want %q", refs[0].Name, want)
	}
}

func TestParseSnapshots_BadJSON(t *testing.T) {
	if _, err := parseSnapshots([]byte("not json"), "abc"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSnapshotName(t *testing.T) {
	ts := time.Date(2025, 6, 1, 4, 0, 0, 0, time.UTC)
	if got := SnapshotName("abc123", ts); got != "host/abc123/2025-06-01T04:00:00Z" {
		t.Fatalf("unexpected snapshot name: %q", got)
	}
}

func TestExtractVersion(t *testing.T) {
	out := "proxmox-backup-client 3.2.7 running version: 3.2.4\n"
	ver, err := ExtractVersion(out)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if ver != "3.2.7" {
		t.Fatalf("unexpected version: %q", ver)
	}
}

func TestExtractVersion_NoMatch(t *testing.T) {
	ver, err := ExtractVersion("something else entirely")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if ver != "" {
		t.Fatalf("expected empty version, got %q", ver)
	}
}
