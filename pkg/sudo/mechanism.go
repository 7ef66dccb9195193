package sudo

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/log"
)

// Kind selects the external program used to obtain root.
type Kind int

const (
	// Sudo is the default mechanism.
	Sudo Kind = iota
	Doas
	// Polkit runs the program through pkexec.
	Polkit
	// Custom runs the program through a user supplied wrapper.
	Custom
)

func (k Kind) String() string {
	switch k {
	case Sudo:
		return "sudo"
	case Doas:
		return "doas"
	case Polkit:
		return "pkexec"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Mechanism is a resolved escalation program.
type Mechanism struct {
	Kind Kind
	// Path is always absolute.
	Path string
}

type builtin struct {
	// candidates are looked up in order, the first one is the canonical path.
	candidates []string
	// flags go between the mechanism binary and the escalated command.
	flags []string
}

// Built-in mechanisms are only ever run from fixed system locations so that a
// writable PATH entry cannot substitute them.
var builtins = map[Kind]builtin{
	Sudo: {
		candidates: []string{
			"/usr/bin/sudo",
			"/bin/sudo",
			"/usr/sbin/sudo",
			"/usr/local/bin/sudo",
			"/run/wrappers/bin/sudo",
			"/opt/homebrew/bin/sudo",
		},
		flags: []string{"--"},
	},
	Doas: {
		candidates: []string{
			"/usr/bin/doas",
			"/bin/doas",
			"/usr/local/bin/doas",
			"/run/wrappers/bin/doas",
		},
		flags: []string{"--"},
	},
	Polkit: {
		// pkexec stops option parsing at the program name and rejects "--".
		candidates: []string{
			"/usr/bin/pkexec",
			"/bin/pkexec",
			"/usr/local/bin/pkexec",
			"/run/wrappers/bin/pkexec",
		},
	},
}

var envCandidates = []string{"/usr/bin/env", "/bin/env"}

// ResolveMechanism returns the escalation program selected by cfg.
//
// A configured Wrapper overrides Mechanism. Built-in mechanisms resolve to the
// first existing candidate path, or to their canonical path when none exists;
// the result is never a bare command name.
func ResolveMechanism(cfg Config) (Mechanism, error) {
	return resolveMechanism(cfg, hostSystem{})
}

func resolveMechanism(cfg Config, sys system) (Mechanism, error) {
	if cfg.Wrapper != "" {
		path, err := resolveWrapper(cfg.Wrapper)
		if err != nil {
			return Mechanism{}, &MechanismError{Mechanism: Mechanism{Kind: Custom}, Err: err}
		}
		return Mechanism{Kind: Custom, Path: path}, nil
	}

	if cfg.Mechanism == Custom {
		return Mechanism{}, fmt.Errorf("%w: custom mechanism requires a wrapper", ErrInvalidConfig)
	}
	b, ok := builtins[cfg.Mechanism]
	if !ok {
		return Mechanism{}, fmt.Errorf("%w: unknown mechanism %s", ErrInvalidConfig, cfg.Mechanism)
	}

	return Mechanism{Kind: cfg.Mechanism, Path: firstExecutable(sys, b.candidates)}, nil
}

func resolveWrapper(wrapper string) (string, error) {
	if filepath.IsAbs(wrapper) {
		return filepath.Clean(wrapper), nil
	}
	if !strings.ContainsRune(wrapper, filepath.Separator) {
		found, err := exec.LookPath(wrapper)
		if err != nil {
			return "", err
		}
		wrapper = found
	}
	return filepath.Abs(wrapper)
}

func firstExecutable(sys system, candidates []string) string {
	for _, c := range candidates {
		if sys.CheckExecutable(c) == nil {
			return c
		}
	}
	return candidates[0]
}

// commandLine builds the argv of the mechanism process:
//
//	<mechanism> [flags] [env NAME=VALUE...] <executable> <args...>
//
// Forwarded variables are handed over through env(1) instead of relying on the
// mechanism's own environment preservation, which sudo and doas restrict by
// policy and pkexec does not offer.
func commandLine(sys system, logger *log.Logger, m Mechanism, forwarded map[string]string, executable string, args []string) []string {
	argv := []string{m.Path}
	if b, ok := builtins[m.Kind]; ok {
		argv = append(argv, b.flags...)
	}

	assignments := envAssignments(logger, forwarded)
	if len(assignments) > 0 {
		argv = append(argv, firstExecutable(sys, envCandidates))
		argv = append(argv, assignments...)
	}

	argv = append(argv, executable)
	return append(argv, args...)
}

// envAssignments renders forwarded as sorted NAME=VALUE words. Names env(1)
// would mistake for options or commands are dropped.
func envAssignments(logger *log.Logger, forwarded map[string]string) []string {
	names := make([]string, 0, len(forwarded))
	for name := range forwarded {
		if name == "" || strings.HasPrefix(name, "-") {
			logger.WithField("name", name).Warn("not forwarding environment variable with invalid name")
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		logger.WithField("name", name).Debug("forwarding environment variable")
		out = append(out, name+"="+forwarded[name])
	}
	return out
}
