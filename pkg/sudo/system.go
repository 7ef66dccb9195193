package sudo

import (
	"os/user"
	"strconv"

	"github.com/loicsikidi/sudo/internal/privilege"
)

// system is the seam between the orchestration logic and the host.
type system interface {
	Credentials() (privilege.Credentials, error)
	ClaimRoot() error
	CheckExecutable(path string) error
	Run(cmd privilege.Command, spawn bool) (int, error)
	LookupUser(uid int) (*user.User, error)
	SupportsBuiltins() bool
}

type hostSystem struct{}

func (hostSystem) Credentials() (privilege.Credentials, error) {
	return privilege.Current()
}

func (hostSystem) ClaimRoot() error {
	return privilege.ClaimRoot()
}

func (hostSystem) CheckExecutable(path string) error {
	return privilege.CheckExecutable(path)
}

func (hostSystem) Run(cmd privilege.Command, spawn bool) (int, error) {
	if spawn {
		return privilege.Spawn(cmd)
	}
	return privilege.ReplaceOrWait(cmd)
}

func (hostSystem) LookupUser(uid int) (*user.User, error) {
	return user.LookupId(strconv.Itoa(uid))
}

func (hostSystem) SupportsBuiltins() bool {
	return privilege.SupportsBuiltinMechanisms()
}
