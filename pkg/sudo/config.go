package sudo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/log"
)

// Config describes an escalation request: which program re-executes which
// executable, and which environment variables follow it.
type Config struct {
	// Mechanism defaults to Sudo.
	Mechanism Kind
	// Wrapper is the path or name of a custom escalation program. When set it
	// overrides Mechanism.
	Wrapper string
	// Rules select the environment variables forwarded to the escalated
	// process. BacktraceVariable is always forwarded.
	Rules []Rule

	// Executable defaults to the running binary.
	Executable string
	// Args are passed after the executable, in order. Defaults to os.Args[1:].
	Args []string
	// Environ is the environment forwarding is computed from. It is also the
	// environment of the mechanism process. Defaults to os.Environ().
	Environ []string

	// Spawn runs the mechanism as a child and waits for it instead of
	// replacing the current process, on platforms that support replacement.
	Spawn bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger
}

func (c *Config) CheckAndSetDefaults() error {
	if c.Logger == nil {
		c.Logger = log.New(os.Stderr)
	}
	if c.Mechanism < Sudo || c.Mechanism > Custom {
		return fmt.Errorf("%w: unknown mechanism %s", ErrInvalidConfig, c.Mechanism)
	}
	if c.Mechanism == Custom && c.Wrapper == "" {
		return fmt.Errorf("%w: custom mechanism requires a wrapper", ErrInvalidConfig)
	}

	if c.Executable == "" {
		exe, err := currentExecutable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}
		c.Executable = exe
	} else if !filepath.IsAbs(c.Executable) {
		abs, err := filepath.Abs(c.Executable)
		if err != nil {
			return fmt.Errorf("failed to make executable path absolute: %w", err)
		}
		c.Executable = abs
	}

	if c.Args == nil && len(os.Args) > 1 {
		c.Args = append([]string(nil), os.Args[1:]...)
	}
	if c.Environ == nil {
		c.Environ = os.Environ()
	}

	rules, err := compileRules(c.Rules)
	if err != nil {
		return err
	}
	c.Rules = rules
	return nil
}

// currentExecutable falls back to the absolute form of argv[0] when the OS
// cannot report the executable path.
func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err == nil {
		return exe, nil
	}
	if len(os.Args) == 0 || os.Args[0] == "" {
		return "", err
	}
	return filepath.Abs(os.Args[0])
}
