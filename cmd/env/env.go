package env

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/loicsikidi/sudo/internal/cliopts"
	"github.com/loicsikidi/sudo/pkg/sudo"
	"github.com/spf13/cobra"
)

type options struct {
	cliopts.Escalation
	prefixes  []string
	names     []string
	wildcards []string
	all       bool
}

func NewCommand() *cobra.Command {
	return newCommand(&options{})
}

func newCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "escalate forwarding selected environment variables and print them as root",
		Long: `Escalate to root handing over the environment variables selected by the flags,
then print the environment of the privileged process.

GOTRACEBACK is always forwarded.`,
		Example: `  # Forward variables starting with MY_APP_
  sudo-demo env --prefix MY_APP_

  ## Forward variables matching a glob
  sudo-demo env --wildcard 'CARGO_*'

  ## Forward everything, like sudo -E
  sudo-demo env --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.Bind(cmd)
	cmd.Flags().StringSliceVar(&opts.prefixes, "prefix", nil, "Forward variables whose name starts with this prefix")
	cmd.Flags().StringSliceVar(&opts.names, "name", nil, "Forward the variable with this exact name")
	cmd.Flags().StringSliceVar(&opts.wildcards, "wildcard", nil, "Forward variables whose name matches this glob")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Forward the whole environment")

	return cmd
}

func (o *options) rules() []sudo.Rule {
	var rules []sudo.Rule
	rules = append(rules, sudo.Prefixes(o.prefixes...)...)
	rules = append(rules, sudo.Names(o.names...)...)
	rules = append(rules, sudo.Wildcards(o.wildcards...)...)
	if o.all {
		rules = append(rules, sudo.Wildcard("*"))
	}
	return rules
}

func run(ctx context.Context, opts *options, w io.Writer) error {
	logger := opts.Logger(os.Stderr)

	cfg := sudo.Config{Logger: logger, Rules: opts.rules()}
	out, err := opts.Escalator(cfg).Escalate(ctx)
	if err != nil {
		return fmt.Errorf("failed to elevate privileges: %w", err)
	}
	if out.State == sudo.User {
		return nil
	}

	logger.WithField("state", out.State).Info("environment of the privileged process")
	for _, kv := range sudo.Environ(sudo.EnvironMap(os.Environ())) {
		fmt.Fprintln(w, kv)
	}
	return nil
}
