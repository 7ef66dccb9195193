package backtrace

import (
	"context"
	"fmt"
	"os"

	"github.com/loicsikidi/sudo/internal/cliopts"
	"github.com/loicsikidi/sudo/pkg/sudo"
	"github.com/spf13/cobra"
)

type options struct {
	cliopts.Escalation
}

func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "backtrace",
		Short: "escalate, then crash to show GOTRACEBACK reaching the privileged process",
		Example: `  # Crash as root with a full traceback
  GOTRACEBACK=all sudo-demo backtrace`,
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

	out, err := opts.Escalator(sudo.Config{Logger: logger}).Escalate(ctx)
	if err != nil {
		return fmt.Errorf("failed to elevate privileges: %w", err)
	}
	if out.State == sudo.User {
		return nil
	}

	logger.WithField(sudo.BacktraceVariable, os.Getenv(sudo.BacktraceVariable)).Info("entering failing function")
	fail()
	return nil
}

//go:noinline
func fail() {
	panic("now you see me fail")
}
