package sudo

import (
	"errors"
	"io"
	"os"
	"os/user"
	"strconv"

	"github.com/caarlos0/log"
	"github.com/loicsikidi/sudo/internal/privilege"
)

type run struct {
	cmd   privilege.Command
	spawn bool
}

type fakeSystem struct {
	creds      privilege.Credentials
	credsErr   error
	claimErr   error
	claimed    bool
	executable map[string]bool
	exitCode   int
	runErr     error
	runs       []run
	users      map[int]*user.User
	noBuiltins bool
}

func newFakeSystem(creds privilege.Credentials, executables ...string) *fakeSystem {
	f := &fakeSystem{creds: creds, executable: map[string]bool{}}
	for _, p := range executables {
		f.executable[p] = true
	}
	return f
}

func (f *fakeSystem) Credentials() (privilege.Credentials, error) {
	return f.creds, f.credsErr
}

func (f *fakeSystem) ClaimRoot() error {
	if f.claimErr != nil {
		return f.claimErr
	}
	f.claimed = true
	f.creds.UID = 0
	return nil
}

func (f *fakeSystem) CheckExecutable(path string) error {
	if f.executable[path] {
		return nil
	}
	return os.ErrNotExist
}

func (f *fakeSystem) Run(cmd privilege.Command, spawn bool) (int, error) {
	f.runs = append(f.runs, run{cmd: cmd, spawn: spawn})
	return f.exitCode, f.runErr
}

func (f *fakeSystem) LookupUser(uid int) (*user.User, error) {
	if u, ok := f.users[uid]; ok {
		return u, nil
	}
	return nil, user.UnknownUserIdError(uid)
}

func (f *fakeSystem) SupportsBuiltins() bool {
	return !f.noBuiltins
}

var (
	userCreds = privilege.Credentials{UID: 1000, EUID: 1000, GID: 1000, EGID: 1000}
	rootCreds = privilege.Credentials{}
	suidCreds = privilege.Credentials{UID: 1000, EUID: 0, GID: 1000, EGID: 1000}

	errBoom = errors.New("boom")
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// testConfig returns a config that does not depend on the test binary.
func testConfig(environ ...string) Config {
	return Config{
		Executable: "/opt/app/bin/app",
		Args:       []string{"serve", "--port", "80"},
		Environ:    append([]string{}, environ...),
		Logger:     quietLogger(),
	}
}

func newTestEscalator(cfg Config, sys system) *Escalator {
	return newEscalator(cfg, sys)
}

func alice() *user.User {
	return &user.User{Uid: strconv.Itoa(1000), Gid: "1000", Username: "alice", HomeDir: "/home/alice"}
}
