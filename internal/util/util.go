package util

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CheckError panics on non-nil errors. Reserved for initialization paths
// where continuing makes no sense.
func CheckError(err error) {
	if err != nil {
		panic(fmt.Sprintf("unexpected error: %v", err))
	}
}

// InitDir ensures the parent directory for path exists with the given mode.
func InitDir(path string, mode fs.FileMode) error {
	expanded := os.ExpandEnv(path)
	return os.MkdirAll(filepath.Dir(expanded), mode)
}
