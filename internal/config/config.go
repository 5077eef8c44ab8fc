package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"github.com/vrcctl/vrcctl/internal/meta"
	"github.com/vrcctl/vrcctl/internal/util/viper"
)

var defaultConfigFileName = "config.yaml"

// Configuration paths understood by the CLI and the serve engine.
const (
	OutputKey   = "output"
	LogLevelKey = "log-level"
	LogFileKey  = "log-file"

	ServerAddrKey = "server.addr"

	LauncherPathKey   = "launcher.path"
	LauncherMarkerKey = "launcher.marker"
	WorkerMarkerKey   = "worker.marker"
	ExtraMarkersKey   = "markers.extra"

	MonitorIntervalKey = "monitor.interval"
	MissThresholdKey   = "monitor.miss-threshold"

	StopConfirmAttemptsKey = "stop.confirm-attempts"
	StopConfirmIntervalKey = "stop.confirm-interval"
)

// Defaults mirror the stock Steam install and the tuning the engine was
// built around. Markers are matched case-insensitively as substrings of the
// process name or executable path.
const (
	DefaultServerAddr     = "127.0.0.1:7437"
	DefaultLauncherPath   = `C:\Program Files (x86)\Steam\steamapps\common\VRChat\start_protected_game.exe`
	DefaultLauncherMarker = "start_protected_game"
	DefaultWorkerMarker   = "vrchat.exe"

	DefaultMonitorInterval     = 3 * time.Second
	DefaultMissThreshold       = 2
	DefaultStopConfirmAttempts = 5
	DefaultStopConfirmInterval = 200 * time.Millisecond
)

// DefaultExtraMarkers are additional process-name markers included in the
// diagnostic process dump (the anti-cheat service runs beside the worker).
var DefaultExtraMarkers = []string{"easyanticheat", "eac"}

// Returns the expanded default config path depending on what environment
// variables are set. If XDG_CONFIG_HOME is set, the default is
// $XDG_CONFIG_HOME/vrcctl, otherwise os.UserHomeDir()/.config/vrcctl.
func GetDefaultConfigPath() (string, error) {
	val, set := os.LookupEnv("XDG_CONFIG_HOME")
	if !set || val == "" {
		var err error
		val, err = os.UserHomeDir()
		if err != nil {
			return "", err
		}
		val = filepath.Join(val, ".config")
	}
	val = filepath.Join(val, meta.CLIName)
	return os.ExpandEnv(val), nil
}

func GetDefaultConfigFilePath() (string, error) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(path, defaultConfigFileName), nil
}

// ExpandDefaultConfigFilePath is GetDefaultConfigFilePath for flag defaults;
// it swallows errors so it can be evaluated at init time.
func ExpandDefaultConfigFilePath() string {
	path, err := GetDefaultConfigFilePath()
	if err != nil {
		return ""
	}
	return path
}

// GetConfig returns the configuration for this instance of the CLI.
func GetConfig(path string, defaultConfigFilePath string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); err == nil {
		// A user-provided config file must load cleanly or we fail now.
		vip, err := viper.NewViperE(path)
		if err != nil {
			return nil, err
		}
		return &Config{Viper: vip, Path: path}, nil
	}

	if path == defaultConfigFilePath {
		// First run: materialize the default configuration file.
		vip, err := viper.InitializeDefaultViper(getDefaultConfig(path), path)
		if err != nil {
			return nil, err
		}
		return &Config{Viper: vip, Path: path}, nil
	}

	return nil, fmt.Errorf("the provided config file path does not exist")
}

// Empty type to represent the _type_ Config. Genesis is to support a key in a Context
type Key struct{}

// ConfigKey is a global instance of the Key type
var ConfigKey = Key{}

// Hook generalizes the viper surface the rest of the code is allowed to
// touch, keeping write access behind Save.
type Hook interface {
	Save() error
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetIntOrElse(key string, orElse int) int
	GetDuration(key string) time.Duration
	GetStringSlice(key string) []string
	Set(k string, v any)
	BindFlag(configPath string, f *pflag.Flag) error
	GetPath() string
}

// Config implements Hook over a viper instance loaded from Path.
type Config struct {
	*v.Viper
	Path string
}

func (c *Config) Save() error {
	return c.WriteConfig()
}

func (c *Config) GetIntOrElse(key string, orElse int) int {
	if c.IsSet(key) {
		return c.GetInt(key)
	}
	return orElse
}

func (c *Config) BindFlag(configPath string, f *pflag.Flag) error {
	return c.BindPFlag(configPath, f)
}

func (c *Config) GetPath() string {
	return c.Path
}

func getDefaultConfig(configFilePath string) map[string]any {
	configDir := filepath.Dir(configFilePath)
	defaultLogPath := filepath.Join(configDir, "logs", meta.CLIName+".log")

	return map[string]any{
		OutputKey:   "text",
		LogLevelKey: "info",
		LogFileKey:  defaultLogPath,
		"server": map[string]any{
			"addr": DefaultServerAddr,
		},
		"launcher": map[string]any{
			"path":   DefaultLauncherPath,
			"marker": DefaultLauncherMarker,
		},
		"worker": map[string]any{
			"marker": DefaultWorkerMarker,
		},
		"markers": map[string]any{
			"extra": DefaultExtraMarkers,
		},
		"monitor": map[string]any{
			"interval":       DefaultMonitorInterval.String(),
			"miss-threshold": DefaultMissThreshold,
		},
		"stop": map[string]any{
			"confirm-attempts": DefaultStopConfirmAttempts,
			"confirm-interval": DefaultStopConfirmInterval.String(),
		},
	}
}
