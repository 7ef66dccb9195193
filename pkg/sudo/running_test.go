package sudo

import (
	"os"
	"runtime"
	"testing"

	"github.com/loicsikidi/sudo/internal/privilege"
	"github.com/stretchr/testify/assert"
)

func TestStateOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		creds privilege.Credentials
		want  RunningAs
	}{
		{name: "root", creds: rootCreds, want: Root},
		{name: "user", creds: userCreds, want: User},
		{name: "setuid", creds: suidCreds, want: Suid},
		{name: "real root with dropped effective user", creds: privilege.Credentials{UID: 0, EUID: 1000}, want: User},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, stateOf(tc.creds))
			assert.Equal(t, tc.want, check(newFakeSystem(tc.creds)))
		})
	}
}

func TestCheckIsNotCached(t *testing.T) {
	t.Parallel()

	sys := newFakeSystem(userCreds)
	assert.Equal(t, User, check(sys))
	sys.creds = rootCreds
	assert.Equal(t, Root, check(sys))
}

func TestRunningAsRootMatchesProcess(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("no uids on windows")
	}

	wantRoot := os.Getuid() == 0 && os.Geteuid() == 0
	assert.Equal(t, wantRoot, RunningAsRoot())
	assert.Equal(t, os.Getuid() != 0 && os.Geteuid() == 0, RunningAsSuid())
}

func TestRunningAsString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user", User.String())
	assert.Equal(t, "root", Root.String())
	assert.Equal(t, "suid", Suid.String())
	assert.Equal(t, "unknown", RunningAs(7).String())
}
