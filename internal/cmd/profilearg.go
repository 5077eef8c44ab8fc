package cmd

import (
	"fmt"
	"strconv"

	"github.com/vrcctl/vrcctl/internal/engine"
)

// ParseProfileArg parses the positional profile argument shared by the
// launch and stop commands. Profiles are positive integers; zero is
// reserved for "unlabeled".
func ParseProfileArg(arg string) (engine.Profile, error) {
	n, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || n == 0 {
		return 0, &ConfigurationError{
			Err: fmt.Errorf("profile must be a positive integer, got %q", arg),
		}
	}
	return engine.Profile(n), nil
}
