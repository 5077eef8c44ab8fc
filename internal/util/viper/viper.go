package viper

import (
	"strings"

	"github.com/spf13/viper"
	"github.com/vrcctl/vrcctl/internal/meta"
	"github.com/vrcctl/vrcctl/internal/util"
)

// InitializeDefaultViper initializes a viper instance with default values
// backed by a file at path. If the file does not exist or is empty, it is
// created with the defaults.
func InitializeDefaultViper(defaultValues map[string]any, path string) (*viper.Viper, error) {
	if err := util.InitDir(path, 0o755); err != nil {
		return nil, err
	}

	rv := NewViper(path)

	if len(rv.AllSettings()) == 0 {
		if err := rv.MergeConfigMap(defaultValues); err != nil {
			return nil, err
		}
		if err := rv.WriteConfig(); err != nil {
			return nil, err
		}
	}

	return rv, nil
}

// NewViperE builds a viper bound to path, failing when the file cannot be read.
func NewViperE(path string) (*viper.Viper, error) {
	rv := newViper(path)
	if err := rv.ReadInConfig(); err != nil {
		return nil, err
	}
	return rv, nil
}

// NewViper builds a viper bound to path, tolerating a missing file.
func NewViper(path string) *viper.Viper {
	rv := newViper(path)
	_ = rv.ReadInConfig()
	return rv
}

func newViper(path string) *viper.Viper {
	rv := viper.New()
	rv.SetConfigFile(path)
	rv.AutomaticEnv()
	rv.SetEnvPrefix(meta.CLIName)
	rv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	return rv
}
