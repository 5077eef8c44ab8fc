package config

import (
	"time"

	"github.com/spf13/pflag"
)

type MockConfigHook struct {
	GetStringMock      func(key string) string
	GetBoolMock        func(key string) bool
	GetIntMock         func(key string) int
	GetIntOrElseMock   func(key string, orElse int) int
	GetDurationMock    func(key string) time.Duration
	GetStringSliceMock func(key string) []string
	SaveMock           func() error
	BindFlagMock       func(string, *pflag.Flag) error
	SetMock            func(k string, v any)
	GetPathMock        func() string
}

func (m *MockConfigHook) Save() error {
	return m.SaveMock()
}

func (m *MockConfigHook) GetString(key string) string {
	if m.GetStringMock != nil {
		return m.GetStringMock(key)
	}
	return ""
}

func (m *MockConfigHook) GetBool(key string) bool {
	return m.GetBoolMock(key)
}

func (m *MockConfigHook) GetInt(key string) int {
	return m.GetIntMock(key)
}

func (m *MockConfigHook) GetIntOrElse(key string, orElse int) int {
	if m.GetIntOrElseMock != nil {
		return m.GetIntOrElseMock(key, orElse)
	}
	return orElse
}

func (m *MockConfigHook) GetDuration(key string) time.Duration {
	if m.GetDurationMock != nil {
		return m.GetDurationMock(key)
	}
	return 0
}

func (m *MockConfigHook) GetStringSlice(key string) []string {
	if m.GetStringSliceMock != nil {
		return m.GetStringSliceMock(key)
	}
	return nil
}

func (m *MockConfigHook) BindFlag(configPath string, f *pflag.Flag) error {
	return m.BindFlagMock(configPath, f)
}

func (m *MockConfigHook) Set(k string, v any) {
	m.SetMock(k, v)
}

func (m *MockConfigHook) GetPath() string {
	return m.GetPathMock()
}
