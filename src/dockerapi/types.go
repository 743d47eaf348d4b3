package dockerapi

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// LifecycleState is the observed running state of a workload. It is queried
// fresh before every operation that needs it; the workload may be started or
// stopped externally between jobs.
type LifecycleState int

const (
	StateUnknown LifecycleState = iota
	StateRunning
	StateStopped
)

func (s LifecycleState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Runtime is a narrow interface over the container runtime used by jobs.
// Keep it small and focused on what we actually need so it stays mockable.
type Runtime interface {
	// State reports the current lifecycle state of the server's container.
	State(ctx context.Context, serverID string) (LifecycleState, error)
	// Stop requests a graceful stop and waits until the container is down
	// or the timeout elapses, in which case it returns a StopTimeoutError.
	Stop(ctx context.Context, serverID string, timeout time.Duration) error
	// Kill force-stops the container immediately.
	Kill(ctx context.Context, serverID string) error
	// Start issues a start request. It does not wait for readiness.
	Start(ctx context.Context, serverID string) error
}

// NotFoundError indicates that no container matches the server id.
type NotFoundError struct{ ServerID string }

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no container found for server %s", e.ServerID)
}

// AmbiguousError indicates that more than one container matches the server id.
type AmbiguousError struct {
	ServerID string
	Names    []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("multiple containers found for server %s: %s", e.ServerID, strings.Join(e.Names, ", "))
}

// StopTimeoutError indicates the container did not reach the stopped state
// within the allowed window. Callers must not run destructive file operations
// against the data directory after seeing this.
type StopTimeoutError struct {
	ServerID string
	Timeout  time.Duration
}

func (e *StopTimeoutError) Error() string {
	return fmt.Sprintf("container for server %s did not stop within %s", e.ServerID, e.Timeout)
}
