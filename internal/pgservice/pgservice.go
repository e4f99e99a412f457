// Package pgservice restarts the local postgresql service pinned to a
// specific cluster version, so a CI host with several versions installed
// serves the one under test.
package pgservice

import (
	"context"
	"fmt"
	"os/exec"
)

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Controller stops and starts the local postgresql service.
type Controller struct {
	run runFunc
}

func New() *Controller {
	return &Controller{run: runCmd}
}

func runCmd(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Restart stops whatever postgresql service is running, then starts the
// cluster for the given version. Failures carry the command output so the
// caller's diagnostic shows what the service manager printed.
func (c *Controller) Restart(ctx context.Context, version string) error {
	if out, err := c.run(ctx, "sudo", "service", "postgresql", "stop"); err != nil {
		return fmt.Errorf("stop postgresql: %w: %s", err, out)
	}
	if out, err := c.run(ctx, "sudo", "service", "postgresql", "start", version); err != nil {
		return fmt.Errorf("start postgresql %s: %w: %s", version, err, out)
	}
	return nil
}
