package sudo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMechanism(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cfg         Config
		executables []string
		want        Mechanism
		wantErr     error
	}{
		{
			name: "sudo is the default",
			cfg:  Config{},
			want: Mechanism{Kind: Sudo, Path: "/usr/bin/sudo"},
		},
		{
			name:        "first existing sudo candidate",
			cfg:         Config{},
			executables: []string{"/run/wrappers/bin/sudo", "/usr/local/bin/sudo"},
			want:        Mechanism{Kind: Sudo, Path: "/usr/local/bin/sudo"},
		},
		{
			name:        "doas",
			cfg:         Config{Mechanism: Doas},
			executables: []string{"/usr/local/bin/doas"},
			want:        Mechanism{Kind: Doas, Path: "/usr/local/bin/doas"},
		},
		{
			name: "polkit",
			cfg:  Config{Mechanism: Polkit},
			want: Mechanism{Kind: Polkit, Path: "/usr/bin/pkexec"},
		},
		{
			name: "wrapper overrides explicit mechanism",
			cfg:  Config{Mechanism: Doas, Wrapper: "/usr/local/bin/run0"},
			want: Mechanism{Kind: Custom, Path: "/usr/local/bin/run0"},
		},
		{
			name: "wrapper path is cleaned",
			cfg:  Config{Wrapper: "/usr/local/../bin/run0"},
			want: Mechanism{Kind: Custom, Path: "/usr/bin/run0"},
		},
		{
			name:    "custom without wrapper",
			cfg:     Config{Mechanism: Custom},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown mechanism",
			cfg:     Config{Mechanism: Kind(17)},
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveMechanism(tc.cfg, newFakeSystem(userCreds, tc.executables...))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveMechanismIsNeverBare(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{Sudo, Doas, Polkit} {
		got, err := resolveMechanism(Config{Mechanism: kind}, newFakeSystem(userCreds))
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got.Path), "%s resolved to %q", kind, got.Path)

		got, err = ResolveMechanism(Config{Mechanism: kind})
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got.Path), "%s resolved to %q", kind, got.Path)
	}
}

func TestResolveWrapper(t *testing.T) {
	dir := t.TempDir()
	wrapper := filepath.Join(dir, "my-wrapper")
	require.NoError(t, os.WriteFile(wrapper, []byte("#!/bin/sh\nexec \"$@\"\n"), 0o755))
	t.Setenv("PATH", dir)

	t.Run("looked up in PATH", func(t *testing.T) {
		got, err := resolveMechanism(Config{Wrapper: "my-wrapper"}, newFakeSystem(userCreds))
		require.NoError(t, err)
		assert.Equal(t, Mechanism{Kind: Custom, Path: wrapper}, got)
	})

	t.Run("relative path", func(t *testing.T) {
		t.Chdir(dir)
		got, err := resolveMechanism(Config{Wrapper: "./my-wrapper"}, newFakeSystem(userCreds))
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got.Path))
		assert.Equal(t, "my-wrapper", filepath.Base(got.Path))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := resolveMechanism(Config{Wrapper: "no-such-wrapper"}, newFakeSystem(userCreds))
		assert.ErrorIs(t, err, ErrMechanismNotFound)
	})
}

func TestCommandLine(t *testing.T) {
	t.Parallel()

	sys := newFakeSystem(userCreds, "/bin/env")
	exe := "/opt/app/bin/app"
	args := []string{"serve", "--port", "80"}

	tests := []struct {
		name      string
		mech      Mechanism
		forwarded map[string]string
		want      []string
	}{
		{
			name: "sudo without environment",
			mech: Mechanism{Kind: Sudo, Path: "/usr/bin/sudo"},
			want: []string{"/usr/bin/sudo", "--", exe, "serve", "--port", "80"},
		},
		{
			name:      "sudo with environment",
			mech:      Mechanism{Kind: Sudo, Path: "/usr/bin/sudo"},
			forwarded: map[string]string{"MY_B": "2", "MY_A": "has space"},
			want:      []string{"/usr/bin/sudo", "--", "/bin/env", "MY_A=has space", "MY_B=2", exe, "serve", "--port", "80"},
		},
		{
			name:      "doas",
			mech:      Mechanism{Kind: Doas, Path: "/usr/bin/doas"},
			forwarded: map[string]string{"GOTRACEBACK": "all"},
			want:      []string{"/usr/bin/doas", "--", "/bin/env", "GOTRACEBACK=all", exe, "serve", "--port", "80"},
		},
		{
			name:      "pkexec takes no separator",
			mech:      Mechanism{Kind: Polkit, Path: "/usr/bin/pkexec"},
			forwarded: map[string]string{"X": "1"},
			want:      []string{"/usr/bin/pkexec", "/bin/env", "X=1", exe, "serve", "--port", "80"},
		},
		{
			name: "custom wrapper",
			mech: Mechanism{Kind: Custom, Path: "/usr/local/bin/run0"},
			want: []string{"/usr/local/bin/run0", exe, "serve", "--port", "80"},
		},
		{
			name:      "names env would parse as options are dropped",
			mech:      Mechanism{Kind: Custom, Path: "/w"},
			forwarded: map[string]string{"-i": "1", "OK": "1"},
			want:      []string{"/w", "/bin/env", "OK=1", exe, "serve", "--port", "80"},
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := commandLine(sys, quietLogger(), tc.mech, tc.forwarded, exe, args)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCommandLineEnvFallback(t *testing.T) {
	t.Parallel()

	got := commandLine(newFakeSystem(userCreds), quietLogger(), Mechanism{Kind: Custom, Path: "/w"}, map[string]string{"A": "1"}, "/x", nil)
	assert.Equal(t, []string{"/w", "/usr/bin/env", "A=1", "/x"}, got)
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sudo", Sudo.String())
	assert.Equal(t, "doas", Doas.String())
	assert.Equal(t, "pkexec", Polkit.String())
	assert.Equal(t, "custom", Custom.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
