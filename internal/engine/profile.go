// Package engine maintains the live mapping between instance profiles and
// the worker processes that represent them. Processes are observed only by
// periodically polling the process directory; the engine reconciles its
// binding table against each snapshot, debouncing disappearances and
// assigning freshly launched profiles to unlabeled workers in FIFO order.
package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Profile identifies one logical instance slot. It is chosen by the
// operator and means nothing to the OS.
type Profile uint32

const profileToken = "--profile="

// ExtractProfile scans a command line for the first --profile=<n> token and
// returns the parsed profile. ok is false when the token is absent or the
// text after it does not parse as a non-negative integer. Workers are not
// guaranteed to carry the token at all; absence is a normal outcome.
func ExtractProfile(cmdline string) (Profile, bool) {
	idx := strings.Index(cmdline, profileToken)
	if idx < 0 {
		return 0, false
	}

	value := cmdline[idx+len(profileToken):]
	if sp := strings.IndexByte(value, ' '); sp >= 0 {
		value = value[:sp]
	}

	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, false
	}
	return Profile(n), true
}

// Arg renders the command-line token that labels a worker with this profile.
func (p Profile) Arg() string {
	return fmt.Sprintf("%s%d", profileToken, uint32(p))
}
