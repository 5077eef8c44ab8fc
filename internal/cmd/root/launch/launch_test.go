package launch

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vrcctl/vrcctl/internal/cmd/common"
	"github.com/vrcctl/vrcctl/internal/engine"
	"github.com/vrcctl/vrcctl/internal/iostreams"
	"github.com/vrcctl/vrcctl/internal/procdir"
	"github.com/vrcctl/vrcctl/internal/server"
	testCmd "github.com/vrcctl/vrcctl/test/cmd"
)

type stubSpawner struct {
	pid int32
}

func (s *stubSpawner) Spawn(context.Context, uint32) (int32, error) {
	s.pid++
	return 2000 + s.pid, nil
}

func newTestClient(t *testing.T) *server.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	binder := engine.New(procdir.NewFake(), &stubSpawner{}, logger, engine.Config{
		WorkerMarker:   "vrchat.exe",
		LauncherMarker: "start_protected_game",
	})
	ts := httptest.NewServer(server.New(binder, logger).Handler())
	t.Cleanup(ts.Close)
	return server.NewClient(ts.URL)
}

func TestLaunchCmdQueuesProfile(t *testing.T) {
	all, _, out, _ := iostreams.NewTestIOStreams()
	client := newTestClient(t)

	helper := testCmd.MockHelper{
		GetArgsMock: func() []string { return []string{"7"} },
		GetAPIClientMock: func() (*server.Client, error) {
			return client, nil
		},
		GetOutputFormatMock: func() (common.OutputFormat, error) {
			return common.TEXT, nil
		},
		GetStreamsMock: func() *iostreams.IOStreams {
			return &all
		},
	}

	require.NoError(t, run(&helper))
	require.Contains(t, out.String(), "launched profile 7")
}

func TestLaunchCmdRejectsBadProfile(t *testing.T) {
	helper := testCmd.MockHelper{
		GetArgsMock: func() []string { return []string{"zero"} },
	}

	require.Error(t, run(&helper))
}
