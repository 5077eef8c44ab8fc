package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vrcctl/vrcctl/internal/engine"
	"github.com/vrcctl/vrcctl/internal/procdir"
)

type stubSpawner struct {
	pid int32
}

func (s *stubSpawner) Spawn(context.Context, uint32) (int32, error) {
	s.pid++
	return 9000 + s.pid, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *engine.Binder, *procdir.Fake) {
	t.Helper()

	dir := procdir.NewFake()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	binder := engine.New(dir, &stubSpawner{}, logger, engine.Config{
		WorkerMarker:        "vrchat.exe",
		LauncherMarker:      "start_protected_game",
		StopConfirmAttempts: 3,
		StopConfirmInterval: time.Millisecond,
	})

	ts := httptest.NewServer(New(binder, logger).Handler())
	t.Cleanup(ts.Close)
	return ts, binder, dir
}

func workerEntry(pid int32, cmdline string) procdir.Entry {
	return procdir.Entry{
		PID:     pid,
		Name:    "VRChat.exe",
		Exe:     `C:\VRChat\VRChat.exe`,
		Cmdline: cmdline,
	}
}

func TestLaunchStopRoundTrip(t *testing.T) {
	ts, binder, dir := newTestServer(t)
	client := NewClient(ts.URL)
	ctx := context.Background()

	launch, err := client.Launch(ctx, 5)
	require.NoError(t, err)
	require.True(t, launch.Success)
	require.True(t, launch.WorkerPending)

	// The monitor finds the unlabeled worker on its next cycle.
	dir.Add(workerEntry(4242, `C:\VRChat\VRChat.exe --no-vr`))
	binder.Reconcile(ctx)

	bound, err := client.ListBound(ctx)
	require.NoError(t, err)
	require.Equal(t, map[engine.Profile]int32{5: 4242}, bound)

	stop, err := client.Stop(ctx, 5)
	require.NoError(t, err)
	require.True(t, stop.Success)
	require.Equal(t, int32(4242), stop.PID)

	bound, err = client.ListBound(ctx)
	require.NoError(t, err)
	require.Empty(t, bound)
}

func TestStopNotFoundPassesThrough(t *testing.T) {
	ts, _, _ := newTestServer(t)
	client := NewClient(ts.URL)

	stop, err := client.Stop(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, stop.Success)
	require.Equal(t, engine.ReasonNotFound, stop.Reason)
}

func TestProcessesAndLauncherEndpoints(t *testing.T) {
	ts, _, dir := newTestServer(t)
	client := NewClient(ts.URL)
	ctx := context.Background()

	running, err := client.IsLauncherRunning(ctx)
	require.NoError(t, err)
	require.False(t, running)

	dir.Add(workerEntry(100, `C:\VRChat\VRChat.exe --no-vr --profile=2`))
	dir.Add(procdir.Entry{
		PID:  101,
		Name: "start_protected_game.exe",
		Exe:  `C:\VRChat\start_protected_game.exe`,
	})

	lines, err := client.Processes(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "PID: 100")
	require.Contains(t, lines[0], "Profile=2")

	running, err = client.IsLauncherRunning(ctx)
	require.NoError(t, err)
	require.True(t, running)
}

func TestInvalidProfileRejected(t *testing.T) {
	ts, _, _ := newTestServer(t)

	for _, path := range []string{"/v1/profiles/abc/launch", "/v1/profiles/0/stop"} {
		resp, err := http.Post(ts.URL+path, "application/json", nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestRequestIDHeader(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestClientErrorWhenServerDown(t *testing.T) {
	client := NewClient("127.0.0.1:1")
	_, err := client.ListBound(context.Background())
	require.Error(t, err)
}
