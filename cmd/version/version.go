package version

import (
	"fmt"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"
)

// NewCommand creates the version command.
func NewCommand(info goversion.Info) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "display the current version of sudo-demo",
		Long: `Display the version of sudo-demo with its revision and build details.

With --short only the version is printed, which is handy to compare the
unprivileged and the escalated binary.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.GitVersion)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print the version only")

	return cmd
}
