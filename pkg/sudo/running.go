package sudo

import "github.com/loicsikidi/sudo/internal/privilege"

// RunningAs describes the privilege state of the process.
type RunningAs int

const (
	// User is a regular, unprivileged process.
	User RunningAs = iota
	// Root is a process whose real and effective user is the superuser
	// (an elevated token on Windows).
	Root
	// Suid is a process started from a setuid root binary: the effective
	// user is root but the real user is not. Escalation claims root in place
	// without restarting.
	Suid
)

func (r RunningAs) String() string {
	switch r {
	case User:
		return "user"
	case Root:
		return "root"
	case Suid:
		return "suid"
	default:
		return "unknown"
	}
}

func stateOf(c privilege.Credentials) RunningAs {
	switch {
	case c.IsRoot():
		return Root
	case c.IsSetuid():
		return Suid
	default:
		return User
	}
}

// check queries the credentials on every call. A failing query is reported
// as User so that callers never assume privileges they do not hold.
func check(sys system) RunningAs {
	creds, err := sys.Credentials()
	if err != nil {
		return User
	}
	return stateOf(creds)
}

// Check returns the current privilege state of the process.
func Check() RunningAs {
	return check(hostSystem{})
}

// RunningAsRoot returns true if the process already runs as root.
func RunningAsRoot() bool {
	return Check() == Root
}

// RunningAsSuid returns true if the process was started from a setuid root
// binary and has not claimed root yet.
func RunningAsSuid() bool {
	return Check() == Suid
}
