package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds one command when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// Command is one invocation of an external program.
type Command struct {
	Name string
	Args []string

	// MergeStderr appends the command's standard error to its output.
	// Log tails need it because the runtime writes container stderr there.
	MergeStderr bool
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner runs a command and returns its output.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// Exec runs commands as child processes.
type Exec struct {
	// Timeout is applied to every command. Zero selects DefaultTimeout.
	Timeout time.Duration
}

// Run starts cmd and waits for it to exit. A non-zero exit status is an
// error that includes the start of the command's standard error.
func (e Exec) Run(ctx context.Context, cmd Command) (string, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.WaitDelay = time.Second
	c.Stdout = &stdout
	if cmd.MergeStderr {
		c.Stderr = &stdout
	} else {
		c.Stderr = &stderr
	}

	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("runner: %s: %w", cmd, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if cmd.MergeStderr {
				msg = strings.TrimSpace(stdout.String())
			}
			return "", fmt.Errorf("runner: %s: exit %d: %s", cmd, exitErr.ExitCode(), msg)
		}
		return "", fmt.Errorf("runner: %s: %w", cmd, err)
	}
	return stdout.String(), nil
}
