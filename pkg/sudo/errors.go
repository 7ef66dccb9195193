package sudo

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyPrivileged is informational: the process already runs as
	// root and escalation was a no-op. Escalate never returns it as an error,
	// see Outcome.Err.
	ErrAlreadyPrivileged = errors.New("process is already privileged")
	// ErrMechanismNotFound is returned when the escalation binary is absent
	// or cannot be executed.
	ErrMechanismNotFound = errors.New("escalation mechanism not found")
	// ErrDenied is returned when the escalation binary ran but exited with a
	// non-zero status, e.g. the user failed or declined authentication.
	ErrDenied = errors.New("escalation denied")
	// ErrPlatformUnsupported is returned when the credential or process
	// primitives needed by the request are missing on this OS.
	ErrPlatformUnsupported = errors.New("escalation is not supported on this platform")
	ErrInvalidPattern      = errors.New("invalid environment pattern")
	ErrInvalidConfig       = errors.New("invalid config")
)

// DeniedError carries the exit status of a mechanism that refused to
// escalate. It matches ErrDenied with errors.Is.
type DeniedError struct {
	Mechanism Mechanism
	Status    int
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s exited with status %d", ErrDenied, e.Mechanism.Kind, e.Status)
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}

// MechanismError reports a mechanism that could not be located or started.
// It matches ErrMechanismNotFound with errors.Is.
type MechanismError struct {
	Mechanism Mechanism
	Err       error
}

func (e *MechanismError) Error() string {
	if e.Mechanism.Path == "" {
		return fmt.Sprintf("%s: %s: %v", ErrMechanismNotFound, e.Mechanism.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s at %q: %v", ErrMechanismNotFound, e.Mechanism.Kind, e.Mechanism.Path, e.Err)
}

func (e *MechanismError) Is(target error) bool {
	return target == ErrMechanismNotFound
}

func (e *MechanismError) Unwrap() error {
	return e.Err
}
