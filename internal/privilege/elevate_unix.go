//go:build unix

package privilege

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func init() {
	platform = platformImpl{
		credentials: credentialsUnix,
		claimRoot:   claimRootUnix,
		executable:  executableUnix,
		replace:     replaceUnix,
		replaces:    true,
		builtins:    true,
	}
}

func credentialsUnix() (Credentials, error) {
	return Credentials{
		UID:  unix.Getuid(),
		EUID: unix.Geteuid(),
		GID:  unix.Getgid(),
		EGID: unix.Getegid(),
	}, nil
}

// claimRootUnix sets the real, effective and saved uid to 0. x/sys/unix routes
// Setuid through the runtime so every thread of the process is switched.
func claimRootUnix() error {
	if unix.Geteuid() != 0 {
		return fmt.Errorf("setuid(0) requires an effective root user: %w", unix.EPERM)
	}
	if err := unix.Setuid(0); err != nil {
		return fmt.Errorf("setuid(0) failed: %w", err)
	}
	return nil
}

func executableUnix(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotExecutable)
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return fmt.Errorf("%s: %w", path, ErrNotExecutable)
	}
	return nil
}

// replaceUnix execve(2)s cmd. Signals and the final exit status therefore
// belong to the new image.
func replaceUnix(cmd Command) error {
	return unix.Exec(cmd.Path, cmd.Argv, cmd.Env)
}
