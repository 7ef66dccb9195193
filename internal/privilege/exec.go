package privilege

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Command describes a process invocation. Argv includes argv[0].
type Command struct {
	Path   string
	Argv   []string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Spawn starts cmd, waits for it to finish and returns its exit status.
// The error is only set when the process could not be started or waited on;
// a non-zero exit status is not an error.
func Spawn(cmd Command) (int, error) {
	if len(cmd.Argv) == 0 {
		return -1, errors.New("empty argv")
	}

	c := exec.Command(cmd.Path, cmd.Argv[1:]...)
	c.Args = cmd.Argv
	c.Env = cmd.Env
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}
	if cmd.Stdout != nil {
		c.Stdout = cmd.Stdout
	}
	if cmd.Stderr != nil {
		c.Stderr = cmd.Stderr
	}

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code < 0 {
				// terminated by a signal
				code = 1
			}
			return code, nil
		}
		return -1, fmt.Errorf("failed to run %q: %w", cmd.Path, err)
	}

	return 0, nil
}
