package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetConfigInitializesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	defaultPath, err := GetDefaultConfigFilePath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmpDir, "vrcctl", "config.yaml"), defaultPath)

	cfg, err := GetConfig(defaultPath, defaultPath)
	require.NoError(t, err)

	require.Equal(t, "text", cfg.GetString(OutputKey))
	require.Equal(t, DefaultServerAddr, cfg.GetString(ServerAddrKey))
	require.Equal(t, DefaultWorkerMarker, cfg.GetString(WorkerMarkerKey))
	require.Equal(t, DefaultMonitorInterval, cfg.GetDuration(MonitorIntervalKey))
	require.Equal(t, DefaultMissThreshold, cfg.GetInt(MissThresholdKey))
	require.Equal(t, DefaultStopConfirmAttempts, cfg.GetInt(StopConfirmAttemptsKey))
	require.Equal(t, 200*time.Millisecond, cfg.GetDuration(StopConfirmIntervalKey))
	require.Equal(t, []string{"easyanticheat", "eac"}, cfg.GetStringSlice(ExtraMarkersKey))

	// The file is materialized on first load.
	require.FileExists(t, defaultPath)
}

func TestGetConfigEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("VRCCTL_WORKER_MARKER", "other.exe")

	defaultPath, err := GetDefaultConfigFilePath()
	require.NoError(t, err)

	cfg, err := GetConfig(defaultPath, defaultPath)
	require.NoError(t, err)
	require.Equal(t, "other.exe", cfg.GetString(WorkerMarkerKey))
}

func TestGetConfigMissingExplicitPath(t *testing.T) {
	_, err := GetConfig("/does/not/exist.yaml", "/other/default.yaml")
	require.Error(t, err)
}
