package sudo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/log"
	"github.com/loicsikidi/sudo/internal/logutil"
	"github.com/loicsikidi/sudo/internal/privilege"
)

// Identity is the user that started a setuid binary.
type Identity struct {
	UID      int
	GID      int
	Username string
	HomeDir  string
}

// Outcome is the result of a successful escalation.
type Outcome struct {
	// State is the privilege state observed before escalating.
	State RunningAs
	// ExitCode of the escalated child, when it was spawned and waited for.
	ExitCode int
	// Env is the environment handed over to the privileged code: the whole
	// environment when already root, the forwarded selection otherwise.
	Env map[string]string
	// Invoker is set when root was claimed from a setuid binary.
	Invoker *Identity
	// Mechanism is set when an escalation program was run.
	Mechanism Mechanism
}

// Err returns ErrAlreadyPrivileged when the escalation was a no-op.
func (o Outcome) Err() error {
	if o.State == Root {
		return ErrAlreadyPrivileged
	}
	return nil
}

// Escalator is a builder around Config. It is not safe for concurrent use.
type Escalator struct {
	cfg  Config
	sys  system
	done *Outcome
}

func New(cfg Config) *Escalator {
	return newEscalator(cfg, hostSystem{})
}

func newEscalator(cfg Config, sys system) *Escalator {
	cfg.Rules = slices.Clone(cfg.Rules)
	return &Escalator{cfg: cfg, sys: sys}
}

func (e *Escalator) Sudo() *Escalator {
	e.cfg.Mechanism = Sudo
	return e
}

func (e *Escalator) Doas() *Escalator {
	e.cfg.Mechanism = Doas
	return e
}

func (e *Escalator) Polkit() *Escalator {
	e.cfg.Mechanism = Polkit
	return e
}

// Wrapper selects a custom escalation program. It takes precedence over any
// built-in mechanism.
func (e *Escalator) Wrapper(path string) *Escalator {
	e.cfg.Mechanism = Custom
	e.cfg.Wrapper = path
	return e
}

// WithEnv forwards the variables whose name starts with one of prefixes.
func (e *Escalator) WithEnv(prefixes ...string) *Escalator {
	e.cfg.Rules = append(e.cfg.Rules, Prefixes(prefixes...)...)
	return e
}

// WithEnvNames forwards the named variables.
func (e *Escalator) WithEnvNames(names ...string) *Escalator {
	e.cfg.Rules = append(e.cfg.Rules, Names(names...)...)
	return e
}

// WithEnvWildcards forwards the variables matching one of the glob patterns.
// "*" forwards the whole environment, which mimics sudo -E; use it with care.
func (e *Escalator) WithEnvWildcards(patterns ...string) *Escalator {
	e.cfg.Rules = append(e.cfg.Rules, Wildcards(patterns...)...)
	return e
}

// SpawnAndWait runs the mechanism as a child process instead of replacing the
// current one.
func (e *Escalator) SpawnAndWait() *Escalator {
	e.cfg.Spawn = true
	return e
}

// Escalate makes sure the privileged part of the program runs as root.
//
//   - Already root: nothing happens.
//   - Setuid root binary: root is claimed in place, nothing is restarted.
//   - Otherwise the executable is re-run through the mechanism. Where the
//     process image can be replaced Escalate only returns on failure.
//
// Once an escalation succeeded further calls return the same Outcome.
func (e *Escalator) Escalate(ctx context.Context) (Outcome, error) {
	if e.done != nil {
		return *e.done, nil
	}

	cfg := e.cfg
	if state := check(e.sys); state == Root {
		environ := cfg.Environ
		if environ == nil {
			environ = os.Environ()
		}
		if cfg.Logger != nil {
			cfg.Logger.Debug("already running as root")
		}
		return e.finish(Outcome{State: Root, Env: EnvironMap(environ)}), nil
	}

	if err := cfg.CheckAndSetDefaults(); err != nil {
		return Outcome{}, fmt.Errorf("failed to validate config: %w", err)
	}
	logger := cfg.Logger

	// credentials are read again: nothing is cached between steps
	state := check(e.sys)
	logger.WithField("state", state).Debug("checked privileges")

	env := EnvironMap(cfg.Environ)
	switch state {
	case Root:
		return e.finish(Outcome{State: Root, Env: env}), nil
	case Suid:
		return e.claimSetuid(logger, cfg, env)
	}

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if cfg.Wrapper == "" && !e.sys.SupportsBuiltins() {
		return Outcome{}, fmt.Errorf("%w: %s", ErrPlatformUnsupported, cfg.Mechanism)
	}

	mech, err := resolveMechanism(cfg, e.sys)
	if err != nil {
		return Outcome{}, err
	}
	if err := e.sys.CheckExecutable(mech.Path); err != nil {
		return Outcome{}, &MechanismError{Mechanism: mech, Err: err}
	}

	forwarded := SelectEnvironment(env, cfg.Rules)
	warnTraceback(logger, forwarded)

	cmd := privilege.Command{
		Path:   mech.Path,
		Argv:   commandLine(e.sys, logger, mech, forwarded, cfg.Executable, cfg.Args),
		Env:    cfg.Environ,
		Stdin:  cfg.Stdin,
		Stdout: cfg.Stdout,
		Stderr: cfg.Stderr,
	}

	logger.WithField("mechanism", mech.Kind).
		WithField("path", mech.Path).
		WithField("forwarded", len(forwarded)).
		Debug("escalating privileges")

	start := time.Now()
	code, err := e.sys.Run(cmd, cfg.Spawn)
	if err != nil {
		if errors.Is(err, privilege.ErrUnsupported) {
			return Outcome{}, fmt.Errorf("%w: %v", ErrPlatformUnsupported, err)
		}
		return Outcome{}, &MechanismError{Mechanism: mech, Err: err}
	}
	logutil.LogDuration(logger, start)
	if code != 0 {
		return Outcome{}, &DeniedError{Mechanism: mech, Status: code}
	}

	return e.finish(Outcome{State: User, ExitCode: code, Env: forwarded, Mechanism: mech}), nil
}

// claimSetuid captures the invoking user and its environment before switching
// the real user to root, so the outcome describes who asked for privileges
// rather than the owner of the binary.
func (e *Escalator) claimSetuid(logger *log.Logger, cfg Config, env map[string]string) (Outcome, error) {
	creds, err := e.sys.Credentials()
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	invoker := &Identity{UID: creds.UID, GID: creds.GID}
	if u, err := e.sys.LookupUser(creds.UID); err == nil {
		invoker.Username = u.Username
		invoker.HomeDir = u.HomeDir
	} else {
		logger.WithError(err).WithField("uid", creds.UID).Debug("could not look up invoking user")
	}
	forwarded := SelectEnvironment(env, cfg.Rules)

	logger.WithField("uid", creds.UID).Debug("claiming root from setuid binary")
	if err := e.sys.ClaimRoot(); err != nil {
		if errors.Is(err, privilege.ErrUnsupported) {
			return Outcome{}, fmt.Errorf("%w: %v", ErrPlatformUnsupported, err)
		}
		return Outcome{}, fmt.Errorf("failed to claim root from setuid binary: %w", err)
	}

	return e.finish(Outcome{State: Suid, Env: forwarded, Invoker: invoker}), nil
}

func (e *Escalator) finish(o Outcome) Outcome {
	e.done = &o
	return o
}

func warnTraceback(logger *log.Logger, forwarded map[string]string) {
	for name, value := range forwarded {
		if !strings.EqualFold(name, BacktraceVariable) {
			continue
		}
		if value != "" && !ValidTraceback(value) {
			logger.WithField("name", name).
				WithField("value", value).
				Warn("invalid traceback setting is forwarded as is")
		}
	}
}

// Escalate runs a single escalation described by cfg.
func Escalate(ctx context.Context, cfg Config) (Outcome, error) {
	return New(cfg).Escalate(ctx)
}

// EscalateWithEnv escalates forwarding every variable matching one of
// wildcards in addition to cfg.Rules. Without wildcards the whole
// environment is forwarded.
func EscalateWithEnv(ctx context.Context, cfg Config, wildcards ...string) (Outcome, error) {
	return escalateWithEnv(ctx, hostSystem{}, cfg, wildcards...)
}

func escalateWithEnv(ctx context.Context, sys system, cfg Config, wildcards ...string) (Outcome, error) {
	if len(wildcards) == 0 {
		wildcards = []string{"*"}
	}
	return newEscalator(cfg, sys).WithEnvWildcards(wildcards...).Escalate(ctx)
}

// EscalateIfNeeded re-runs the program with sudo unless it already runs as
// root, forwarding only BacktraceVariable.
func EscalateIfNeeded(ctx context.Context) (Outcome, error) {
	return escalateIfNeeded(ctx, hostSystem{}, Config{})
}

func escalateIfNeeded(ctx context.Context, sys system, cfg Config) (Outcome, error) {
	return newEscalator(cfg, sys).Escalate(ctx)
}

// EscalateWithAllEnv escalates with sudo, forwarding the whole environment
// like sudo -E.
func EscalateWithAllEnv(ctx context.Context) (Outcome, error) {
	return escalateWithEnv(ctx, hostSystem{}, Config{})
}

// WithEnv escalates with sudo, forwarding the variables starting with one of
// prefixes.
func WithEnv(ctx context.Context, prefixes ...string) (Outcome, error) {
	return withEnv(ctx, hostSystem{}, Config{}, prefixes...)
}

func withEnv(ctx context.Context, sys system, cfg Config, prefixes ...string) (Outcome, error) {
	return newEscalator(cfg, sys).WithEnv(prefixes...).Escalate(ctx)
}

// WithEnvWildcards escalates with sudo, forwarding the variables matching one
// of the glob patterns.
func WithEnvWildcards(ctx context.Context, wildcards ...string) (Outcome, error) {
	return withEnvWildcards(ctx, hostSystem{}, Config{}, wildcards...)
}

func withEnvWildcards(ctx context.Context, sys system, cfg Config, wildcards ...string) (Outcome, error) {
	return newEscalator(cfg, sys).WithEnvWildcards(wildcards...).Escalate(ctx)
}

// EscalateDoas is EscalateIfNeeded with doas as the mechanism.
func EscalateDoas(ctx context.Context) (Outcome, error) {
	return escalateDoas(ctx, hostSystem{}, Config{})
}

func escalateDoas(ctx context.Context, sys system, cfg Config) (Outcome, error) {
	return newEscalator(cfg, sys).Doas().Escalate(ctx)
}

// EscalatePkexec is EscalateIfNeeded with polkit as the mechanism.
func EscalatePkexec(ctx context.Context) (Outcome, error) {
	return escalatePkexec(ctx, hostSystem{}, Config{})
}

func escalatePkexec(ctx context.Context, sys system, cfg Config) (Outcome, error) {
	return newEscalator(cfg, sys).Polkit().Escalate(ctx)
}
