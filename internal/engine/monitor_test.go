package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vrcctl/vrcctl/internal/procdir"
	"go.uber.org/goleak"
)

func TestAssignmentFollowsLaunchOrder(t *testing.T) {
	dir := procdir.NewFake()
	b := newTestBinder(dir, &fakeSpawner{})
	ctx := context.Background()

	for _, profile := range []Profile{3, 1, 2} {
		require.True(t, b.Launch(ctx, profile).Success)
	}

	// Unlabeled workers appear one cycle apart; they bind in launch
	// order, not pid order.
	dir.Add(workerEntry(310, ""))
	b.Reconcile(ctx)
	dir.Add(workerEntry(305, ""))
	b.Reconcile(ctx)
	dir.Add(workerEntry(307, ""))
	b.Reconcile(ctx)

	if diff := cmp.Diff(map[Profile]int32{3: 310, 1: 305, 2: 307}, b.ListBound(ctx)); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestUnlabeledWorkerWithEmptyQueueStaysUnbound(t *testing.T) {
	dir := procdir.NewFake()
	b := newTestBinder(dir, &fakeSpawner{})
	ctx := context.Background()

	dir.Add(workerEntry(100, ""))
	b.Reconcile(ctx)
	require.Empty(t, b.ListBound(ctx))

	// Reconsidered once a launch queues a profile.
	b.Launch(ctx, 4)
	b.Reconcile(ctx)
	require.Equal(t, map[Profile]int32{4: 100}, b.ListBound(ctx))
}

func TestAlreadyBoundUnlabeledPIDIsNotReassigned(t *testing.T) {
	dir := procdir.NewFake()
	b := newTestBinder(dir, &fakeSpawner{})
	ctx := context.Background()

	b.Launch(ctx, 1)
	dir.Add(workerEntry(100, ""))
	b.Reconcile(ctx)
	require.Equal(t, map[Profile]int32{1: 100}, b.ListBound(ctx))

	// The same unlabeled pid must not consume further queue entries.
	b.Launch(ctx, 2)
	b.Reconcile(ctx)
	require.Equal(t, map[Profile]int32{1: 100}, b.ListBound(ctx))
	require.Equal(t, []Profile{2}, b.pending.Snapshot())
}

func TestDebounceSingleMissSurvives(t *testing.T) {
	dir := procdir.NewFake()
	dir.Add(workerEntry(200, "1"))
	b := newTestBinder(dir, &fakeSpawner{})
	ctx := context.Background()

	b.Reconcile(ctx)
	require.Equal(t, map[Profile]int32{1: 200}, b.ListBound(ctx))

	// Gone for exactly one cycle, back on the next: never evicted.
	dir.Remove(200)
	b.Reconcile(ctx)
	dir.Add(workerEntry(200, "1"))
	b.Reconcile(ctx)
	require.Equal(t, map[Profile]int32{1: 200}, b.ListBound(ctx))

	// The reappearance reset the counter, so one more miss still does
	// not evict.
	dir.Remove(200)
	b.Reconcile(ctx)
	pid, bound := b.boundPID(1)
	require.True(t, bound)
	require.Equal(t, int32(200), pid)
}

func TestDebounceTwoConsecutiveMissesEvicts(t *testing.T) {
	dir := procdir.NewFake()
	dir.Add(workerEntry(200, "1"))
	b := newTestBinder(dir, &fakeSpawner{})
	ctx := context.Background()

	b.Reconcile(ctx)
	dir.Remove(200)
	b.Reconcile(ctx)
	b.Reconcile(ctx)

	_, bound := b.boundPID(1)
	require.False(t, bound)
}

func TestPidMigrationWithoutEviction(t *testing.T) {
	dir := procdir.NewFake()
	dir.Add(workerEntry(400, "4"))
	b := newTestBinder(dir, &fakeSpawner{})
	ctx := context.Background()

	b.Reconcile(ctx)
	require.Equal(t, map[Profile]int32{4: 400}, b.ListBound(ctx))

	// The worker replaced itself under a new pid, same label. The
	// same-cycle miss must not win over the new labeled detection.
	dir.Remove(400)
	dir.Add(workerEntry(401, "4"))
	b.Reconcile(ctx)
	require.Equal(t, map[Profile]int32{4: 401}, b.ListBound(ctx))

	b.Reconcile(ctx)
	require.Equal(t, map[Profile]int32{4: 401}, b.ListBound(ctx))
}

func TestSuppressionFencesMonitor(t *testing.T) {
	dir := procdir.NewFake()
	dir.Add(workerEntry(500, "5"))
	b := newTestBinder(dir, &fakeSpawner{})
	ctx := context.Background()

	b.Reconcile(ctx)
	require.Equal(t, map[Profile]int32{5: 500}, b.ListBound(ctx))

	release := b.stopping.Acquire(5)

	// While the lease is held: no eviction when the pid disappears...
	dir.Remove(500)
	b.Reconcile(ctx)
	b.Reconcile(ctx)
	pid, bound := b.boundPID(5)
	require.True(t, bound)
	require.Equal(t, int32(500), pid)

	// ...and no rebinding when a labeled detection shows up.
	dir.Add(workerEntry(501, "5"))
	b.Reconcile(ctx)
	pid, _ = b.boundPID(5)
	require.Equal(t, int32(500), pid)

	release()
	b.Reconcile(ctx)
	pid, _ = b.boundPID(5)
	require.Equal(t, int32(501), pid)
}

func TestSuppressedProfileKeepsQueuePlace(t *testing.T) {
	dir := procdir.NewFake()
	b := newTestBinder(dir, &fakeSpawner{})
	ctx := context.Background()

	b.Launch(ctx, 8)
	b.Launch(ctx, 9)

	release := b.stopping.Acquire(8)
	dir.Add(workerEntry(100, ""))
	b.Reconcile(ctx)

	// 9 binds; 8 stays queued at the front instead of being dropped.
	require.Equal(t, map[Profile]int32{9: 100}, b.ListBound(ctx))
	require.Equal(t, []Profile{8}, b.pending.Snapshot())

	release()
	dir.Add(workerEntry(101, ""))
	b.Reconcile(ctx)
	require.Equal(t, map[Profile]int32{9: 100, 8: 101}, b.ListBound(ctx))
}

func TestEnumerationFailureSkipsCycle(t *testing.T) {
	dir := procdir.NewFake()
	dir.Add(workerEntry(200, "1"))
	b := newTestBinder(dir, &fakeSpawner{})
	ctx := context.Background()

	b.Reconcile(ctx)

	// A broken directory freezes the mapping instead of draining it.
	dir.SetEnumerateError(errors.New("proc unavailable"))
	for range 5 {
		b.Reconcile(ctx)
	}
	pid, bound := b.boundPID(1)
	require.True(t, bound)
	require.Equal(t, int32(200), pid)

	dir.SetEnumerateError(nil)
	dir.Remove(200)
	b.Reconcile(ctx)
	b.Reconcile(ctx)
	_, bound = b.boundPID(1)
	require.False(t, bound)
}

func TestLaunchDetectStopEndToEnd(t *testing.T) {
	dir := procdir.NewFake()
	spawner := &fakeSpawner{}
	b := newTestBinder(dir, spawner)
	ctx := context.Background()

	result := b.Launch(ctx, 5)
	require.True(t, result.Success)
	require.True(t, result.WorkerPending)

	// Two empty cycles pass before the worker shows up, unlabeled.
	b.Reconcile(ctx)
	b.Reconcile(ctx)
	require.Empty(t, b.ListBound(ctx))

	dir.Add(workerEntry(4242, ""))
	b.Reconcile(ctx)
	require.Equal(t, map[Profile]int32{5: 4242}, b.ListBound(ctx))

	stop := b.Stop(ctx, 5)
	require.True(t, stop.Success)
	require.Equal(t, int32(4242), stop.PID)
	require.Empty(t, b.ListBound(ctx))
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMonitorRunStopsWithContext(t *testing.T) {
	dir := procdir.NewFake()
	b := newTestBinder(dir, &fakeSpawner{})
	m := NewMonitor(b, time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	dir.Add(workerEntry(100, "1"))
	require.Eventually(t, func() bool {
		_, bound := b.boundPID(1)
		return bound
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop with its context")
	}
}
