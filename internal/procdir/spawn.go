package procdir

import (
	"context"
	"fmt"
	"os/exec"
)

// Spawner starts the launcher executable for a profile and reports the
// launcher's own pid. The worker process the launcher eventually starts is
// discovered separately by polling the Directory; the launcher pid is
// informational only.
type Spawner interface {
	Spawn(ctx context.Context, profile uint32) (int32, error)
}

// NewExecSpawner returns a Spawner that execs path with baseArgs followed by
// the --profile=<n> token.
func NewExecSpawner(path string, baseArgs ...string) Spawner {
	return &execSpawner{path: path, baseArgs: baseArgs}
}

type execSpawner struct {
	path     string
	baseArgs []string
}

func (s *execSpawner) Spawn(_ context.Context, profile uint32) (int32, error) {
	args := append(append([]string{}, s.baseArgs...), fmt.Sprintf("--profile=%d", profile))

	// Deliberately not exec.CommandContext: the launcher outlives the
	// request that started it.
	cmd := exec.Command(s.path, args...)
	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := int32(cmd.Process.Pid)
	go func() {
		// Reap the launcher whenever it exits on its own.
		_ = cmd.Wait()
	}()
	return pid, nil
}
