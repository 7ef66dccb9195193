package whoami

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/caarlos0/log"
	"github.com/loicsikidi/sudo/internal/cliopts"
	"github.com/loicsikidi/sudo/internal/logutil"
	"github.com/loicsikidi/sudo/internal/privilege"
	"github.com/loicsikidi/sudo/pkg/sudo"
	"github.com/spf13/cobra"
)

const idPath = "/usr/bin/id"

type options struct {
	cliopts.Escalation
}

func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "print the process identity before and after escalation",
		Long: `Log the real and effective user of the process, escalate to root and log them again.

When installed as a setuid root binary, root is claimed without restarting.`,
		Example: `  # Escalate with sudo
  sudo-demo whoami

  ## Escalate with pkexec
  sudo-demo whoami --polkit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.Bind(cmd)

	return cmd
}

func run(ctx context.Context, opts *options) error {
	logger := opts.Logger(os.Stderr)

	if err := logIdentity(logger, "before escalation"); err != nil {
		return err
	}

	out, err := opts.Escalator(sudo.Config{Logger: logger}).Escalate(ctx)
	if err != nil {
		return fmt.Errorf("failed to elevate privileges: %w", err)
	}
	if out.State == sudo.User {
		// the escalated child already did the work
		return nil
	}
	if out.Invoker != nil {
		logger.WithField("user", out.Invoker.Username).
			WithField("uid", out.Invoker.UID).
			Info("claimed root from setuid binary")
	}

	return logIdentity(logger, "after escalation")
}

func logIdentity(logger *log.Logger, label string) error {
	creds, err := privilege.Current()
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}
	logutil.LogCredentials(logger, label, creds)

	id := exec.Command(idPath)
	id.Stdout = os.Stdout
	id.Stderr = os.Stderr
	if err := id.Run(); err != nil {
		logger.WithError(err).Warn("could not run id")
	}
	return nil
}
