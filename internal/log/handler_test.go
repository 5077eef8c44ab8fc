package log

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDualHandlerMirrorsErrorsOnly(t *testing.T) {
	t.Parallel()

	primary := &bytes.Buffer{}
	secondary := &bytes.Buffer{}

	handler := NewDualHandler(
		slog.NewTextHandler(primary, &slog.HandlerOptions{Level: slog.LevelDebug}),
		NewFriendlyErrorHandler(secondary),
	)
	logger := slog.New(handler)

	logger.Info("reconcile cycle complete", "detected", 2)
	require.Contains(t, primary.String(), "reconcile cycle complete")
	require.Empty(t, secondary.String())

	logger.Error("spawn failed", "error", errors.New("no such file"))
	require.Contains(t, primary.String(), "spawn failed")
	require.Contains(t, secondary.String(), "Error: spawn failed")
	require.Contains(t, secondary.String(), "no such file")
}

func TestFriendlyHandlerSortsAttributes(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	logger := slog.New(NewFriendlyErrorHandler(out))

	logger.Error("stop failed", "profile", 3, "pid", 4242)

	text := out.String()
	require.Contains(t, text, "Error: stop failed")
	require.Less(t, bytes.Index(out.Bytes(), []byte("pid: 4242")),
		bytes.Index(out.Bytes(), []byte("profile: 3")))
	_ = text
}

func TestConfigLevelStringToSlogLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, LevelTrace, ConfigLevelStringToSlogLevel("trace"))
	require.Equal(t, slog.LevelDebug, ConfigLevelStringToSlogLevel("debug"))
	require.Equal(t, slog.LevelInfo, ConfigLevelStringToSlogLevel("info"))
	require.Equal(t, slog.LevelError, ConfigLevelStringToSlogLevel("bogus"))
}
