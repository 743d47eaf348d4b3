package jobs

import "testing"

func TestLockRegistry_ExclusivePerServer(t *testing.T) {
	reg := NewLockRegistry()

	release, ok := reg.TryAcquire("abc123")
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	if _, ok := reg.TryAcquire("abc123"); ok {
		t.Fatal("second acquire for the same server must fail")
	}
	release()
	release2, ok := reg.TryAcquire("abc123")
	if !ok {
		t.Fatal("acquire after release should succeed")
	}
	release2()
}

func TestLockRegistry_DistinctServersIndependent(t *testing.T) {
	reg := NewLockRegistry()

	releaseA, ok := reg.TryAcquire("server-a")
	if !ok {
		t.Fatal("acquire a should succeed")
	}
	defer releaseA()

	releaseB, ok := reg.TryAcquire("server-b")
	if !ok {
		t.Fatal("a held lock for one server must not block another")
	}
	defer releaseB()
}
