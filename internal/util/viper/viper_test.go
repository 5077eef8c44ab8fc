package viper

import "testing"

func TestNewViperEnvKeyReplacer(t *testing.T) {
	t.Setenv("VRCCTL_LOG_LEVEL", "debug")
	t.Setenv("VRCCTL_MONITOR_MISS_THRESHOLD", "3")

	v := NewViper("nonexistent.yaml")

	if got := v.GetString("log-level"); got != "debug" {
		t.Fatalf("expected log-level to be %q, got %q", "debug", got)
	}
	if got := v.GetInt("monitor.miss-threshold"); got != 3 {
		t.Fatalf("expected monitor.miss-threshold to be %d, got %d", 3, got)
	}
}
