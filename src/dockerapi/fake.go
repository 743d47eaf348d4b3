package dockerapi

import (
	"context"
	"sync"
	"time"
)

// FakeRuntime is an in-memory Runtime implementation for unit tests. It
// records every lifecycle call in order so tests can assert on sequencing.
type FakeRuntime struct {
	mu     sync.Mutex
	States map[string]LifecycleState
	Calls  []string

	StateErr error
	StopErr  error
	KillErr  error
	StartErr error
}

func NewFake() *FakeRuntime {
	return &FakeRuntime{States: map[string]LifecycleState{}}
}

func (f *FakeRuntime) record(call string) {
	f.Calls = append(f.Calls, call)
}

func (f *FakeRuntime) State(ctx context.Context, serverID string) (LifecycleState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("state " + serverID)
	if f.StateErr != nil {
		return StateUnknown, f.StateErr
	}
	state, ok := f.States[serverID]
	if !ok {
		return StateUnknown, &NotFoundError{ServerID: serverID}
	}
	return state, nil
}

func (f *FakeRuntime) Stop(ctx context.Context, serverID string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stop " + serverID)
	if f.StopErr != nil {
		return f.StopErr
	}
	f.States[serverID] = StateStopped
	return nil
}

func (f *FakeRuntime) Kill(ctx context.Context, serverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("kill " + serverID)
	if f.KillErr != nil {
		return f.KillErr
	}
	f.States[serverID] = StateStopped
	return nil
}

func (f *FakeRuntime) Start(ctx context.Context, serverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("start " + serverID)
	if f.StartErr != nil {
		return f.StartErr
	}
	f.States[serverID] = StateRunning
	return nil
}

// CallLog returns a copy of the recorded lifecycle calls.
func (f *FakeRuntime) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}
