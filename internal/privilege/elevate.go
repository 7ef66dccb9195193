package privilege

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when the current platform lacks the primitive
	// required by an operation (setuid, process replacement, ...).
	ErrUnsupported = errors.New("operation not supported on this platform")
	// ErrNotExecutable is returned when a command path does not point to an
	// executable file.
	ErrNotExecutable = errors.New("file is not executable")
)

// Credentials is a snapshot of the process identity.
//
// On Windows there is no uid concept; an elevated token is reported as
// UID/EUID 0 and a non elevated one as -1.
type Credentials struct {
	UID  int
	EUID int
	GID  int
	EGID int
}

// IsRoot reports whether both the real and the effective user are the superuser.
func (c Credentials) IsRoot() bool {
	return c.UID == 0 && c.EUID == 0
}

// IsSetuid reports whether the process runs with an effective superuser
// identity that it did not start with, i.e. it was started from a setuid
// root binary.
func (c Credentials) IsSetuid() bool {
	return c.EUID == 0 && c.UID != 0
}

func (c Credentials) String() string {
	return fmt.Sprintf("uid=%d euid=%d gid=%d egid=%d", c.UID, c.EUID, c.GID, c.EGID)
}

// platformImpl gathers the OS specific primitives. Each supported OS fills it
// from an init function.
type platformImpl struct {
	credentials func() (Credentials, error)
	claimRoot   func() error
	executable  func(path string) error
	replace     func(cmd Command) error
	// replaces is true when replace swaps the process image instead of
	// spawning a child.
	replaces bool
	// builtins is true when sudo, doas and pkexec can be expected on the host.
	builtins bool
}

var platform platformImpl

// Current returns the credentials of the running process. The result is never
// cached.
func Current() (Credentials, error) {
	if platform.credentials == nil {
		return Credentials{}, ErrUnsupported
	}
	return platform.credentials()
}

// ClaimRoot switches the real user to root. It only succeeds when the effective
// user is already root, which is the case for setuid root binaries.
func ClaimRoot() error {
	if platform.claimRoot == nil {
		return ErrUnsupported
	}
	return platform.claimRoot()
}

// CheckExecutable returns nil when path is an executable regular file.
func CheckExecutable(path string) error {
	if platform.executable == nil {
		return ErrUnsupported
	}
	return platform.executable(path)
}

// ReplacesProcess reports whether ReplaceOrWait swaps the process image on
// this platform.
func ReplacesProcess() bool {
	return platform.replaces
}

// SupportsBuiltinMechanisms reports whether the system escalation tools
// (sudo, doas, pkexec) are meaningful on this platform.
func SupportsBuiltinMechanisms() bool {
	return platform.builtins
}

// ReplaceOrWait runs cmd in place of the current process when the platform
// can replace the process image. In that case it only returns on failure.
// Elsewhere it spawns cmd, waits for it and returns its exit status.
func ReplaceOrWait(cmd Command) (int, error) {
	if !platform.replaces || platform.replace == nil {
		return Spawn(cmd)
	}
	if err := platform.replace(cmd); err != nil {
		return -1, fmt.Errorf("failed to replace process with %q: %w", cmd.Path, err)
	}
	// unreachable: a successful replace never returns
	return 0, nil
}
