package media

import (
	"context"
	"os/exec"
)

// commandRunner executes external commands and returns their combined output.
// Injectable so tests never spawn real processes.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error)
}

// osCommandRunner implements commandRunner using exec.CommandContext, which
// kills the process when the context expires - no orphans are left behind.
type osCommandRunner struct{}

func (osCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- name and args are controlled by this package, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
