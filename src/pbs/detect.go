package pbs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const binaryName = "proxmox-backup-client"

// BinaryInfo describes a detected proxmox-backup-client binary.
type BinaryInfo struct {
	Path    string
	Version string
}

var versionRegexp = regexp.MustCompile(`proxmox-backup-client\s+([0-9]+\.[0-9]+\.[0-9]+(?:-[A-Za-z0-9.]+)?)`)

// Detect locates the proxmox-backup-client binary on PATH, queries its
// version, and returns the gathered metadata. The context bounds the version
// subprocess.
func Detect(ctx context.Context) (BinaryInfo, error) {
	exe, err := exec.LookPath(binaryName)
	if err != nil {
		return BinaryInfo{}, fmt.Errorf("%s not found on PATH: %w", binaryName, err)
	}
	ver, err := queryVersion(ctx, exe)
	if err != nil {
		return BinaryInfo{}, err
	}
	return BinaryInfo{Path: exe, Version: ver}, nil
}

func queryVersion(ctx context.Context, exe string) (string, error) {
	// Guard against commands that hang by applying a short timeout.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, exe, "version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: version command failed: %w", binaryName, err)
	}
	version, err := parseVersion(strings.NewReader(string(out)))
	if err != nil {
		return "", err
	}
	if version == "" {
		return "", errors.New(binaryName + ": could not parse version output")
	}
	return version, nil
}

func parseVersion(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if matches := versionRegexp.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return matches[1], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%s: read version output: %w", binaryName, err)
	}
	return "", nil
}

// ExtractVersion derives the client version string from the supplied command
// output. It is primarily exposed for testing.
func ExtractVersion(output string) (string, error) {
	return parseVersion(strings.NewReader(output))
}
