package signing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"goldword-tools/internal/util"
)

// ErrBinaryNotFound is returned when a verification tool cannot be executed.
var ErrBinaryNotFound = errors.New("verification binary not found")

// Result is the captured outcome of one tool invocation.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// Runner executes an external command and captures merged stdout/stderr.
// A non-zero exit is reported through Result.ExitCode, not as an error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	timer := util.StartTimer()
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	res := Result{Output: string(out), Duration: timer.Elapsed()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("run %s: %w", name, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			return res, fmt.Errorf("%w: %s", ErrBinaryNotFound, name)
		default:
			return res, fmt.Errorf("run %s: %w", name, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"command":     name + " " + strings.Join(args, " "),
		"exit_code":   res.ExitCode,
		"duration_ms": res.Duration.Milliseconds(),
		"bytes":       len(out),
	}).Debug("verification tool finished")
	return res, nil
}
