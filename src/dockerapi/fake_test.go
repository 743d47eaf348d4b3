package dockerapi

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFakeRuntime_TransitionsAndCallLog(t *testing.T) {
	f := NewFake()
	f.States["abc123"] = StateRunning

	ctx := context.Background()
	state, err := f.State(ctx, "abc123")
	if err != nil || state != StateRunning {
		t.Fatalf("state: %v %v", state, err)
	}
	if err := f.Stop(ctx, "abc123", time.Minute); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if f.States["abc123"] != StateStopped {
		t.Fatal("stop should transition to stopped")
	}
	if err := f.Start(ctx, "abc123"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if f.States["abc123"] != StateRunning {
		t.Fatal("start should transition to running")
	}

	want := []string{"state abc123", "stop abc123", "start abc123"}
	got := f.CallLog()
	if len(got) != len(want) {
		t.Fatalf("call log mismatch: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFakeRuntime_UnknownServer(t *testing.T) {
	f := NewFake()
	_, err := f.State(context.Background(), "ghost")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLifecycleState_String(t *testing.T) {
	cases := map[LifecycleState]string{
		StateRunning: "running",
		StateStopped: "stopped",
		StateUnknown: "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("state %d: got %q, want %q", state, got, want)
		}
	}
}
