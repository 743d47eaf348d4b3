package dockerapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

const defaultPollInterval = 2 * time.Second

// DockerRuntime implements Runtime against the local Docker daemon.
// Pterodactyl names each server's container after the server's UUID, so
// containers are resolved by name prefix.
type DockerRuntime struct {
	c    *client.Client
	poll time.Duration
}

// Connect builds a Docker client from the environment (DOCKER_HOST etc.).
func Connect() (*DockerRuntime, error) {
	c, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker: initialize client: %w", err)
	}
	return &DockerRuntime{c: c, poll: defaultPollInterval}, nil
}

// Close releases the underlying client connection.
func (r *DockerRuntime) Close() error {
	return r.c.Close()
}

// resolve maps a server id to the single container whose name starts with it.
func (r *DockerRuntime) resolve(ctx context.Context, serverID string) (string, error) {
	args := filters.NewArgs(filters.Arg("name", serverID))
	list, err := r.c.ContainerList(ctx, container.ListOptions{All: true, Filters: args})
	if err != nil {
		return "", fmt.Errorf("docker: list containers: %w", err)
	}
	var ids, names []string
	for _, ctr := range list {
		for _, name := range ctr.Names {
			if strings.HasPrefix(strings.TrimPrefix(name, "/"), serverID) {
				ids = append(ids, ctr.ID)
				names = append(names, strings.TrimPrefix(name, "/"))
				break
			}
		}
	}
	switch len(ids) {
	case 0:
		return "", &NotFoundError{ServerID: serverID}
	case 1:
		return ids[0], nil
	default:
		return "", &AmbiguousError{ServerID: serverID, Names: names}
	}
}

func (r *DockerRuntime) State(ctx context.Context, serverID string) (LifecycleState, error) {
	id, err := r.resolve(ctx, serverID)
	if err != nil {
		return StateUnknown, err
	}
	insp, err := r.c.ContainerInspect(ctx, id)
	if err != nil {
		return StateUnknown, fmt.Errorf("docker: inspect %s: %w", serverID, err)
	}
	if insp.State != nil && insp.State.Running {
		return StateRunning, nil
	}
	return StateStopped, nil
}

func (r *DockerRuntime) Stop(ctx context.Context, serverID string, timeout time.Duration) error {
	id, err := r.resolve(ctx, serverID)
	if err != nil {
		return err
	}
	secs := int(timeout.Seconds())
	if err := r.c.ContainerStop(ctx, id, container.StopOptions{Timeout: &secs}); err != nil {
		return fmt.Errorf("docker: stop %s: %w", serverID, err)
	}
	// The stop request returning does not guarantee the container is down;
	// poll until it is or the window closes.
	deadline := time.Now().Add(timeout)
	for {
		insp, err := r.c.ContainerInspect(ctx, id)
		if err != nil {
			return fmt.Errorf("docker: inspect %s: %w", serverID, err)
		}
		if insp.State == nil || !insp.State.Running {
			return nil
		}
		if time.Now().After(deadline) {
			return &StopTimeoutError{ServerID: serverID, Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.poll):
		}
	}
}

func (r *DockerRuntime) Kill(ctx context.Context, serverID string) error {
	id, err := r.resolve(ctx, serverID)
	if err != nil {
		return err
	}
	if err := r.c.ContainerKill(ctx, id, "SIGKILL"); err != nil {
		return fmt.Errorf("docker: kill %s: %w", serverID, err)
	}
	return nil
}

func (r *DockerRuntime) Start(ctx context.Context, serverID string) error {
	id, err := r.resolve(ctx, serverID)
	if err != nil {
		return err
	}
	if err := r.c.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return fmt.Errorf("docker: start %s: %w", serverID, err)
	}
	return nil
}
