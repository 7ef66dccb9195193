package main

import (
	"errors"
	"os"

	goversion "github.com/caarlos0/go-version"
	"github.com/caarlos0/log"
	"github.com/loicsikidi/sudo/cmd/backtrace"
	"github.com/loicsikidi/sudo/cmd/env"
	versionCmd "github.com/loicsikidi/sudo/cmd/version"
	"github.com/loicsikidi/sudo/cmd/whoami"
	"github.com/loicsikidi/sudo/internal"
	"github.com/loicsikidi/sudo/pkg/sudo"
	"github.com/spf13/cobra"
)

const website = "https://github.com/loicsikidi/sudo"

var (
	version = ""
	builtBy = ""
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sudo-demo",
		Short:         "restart yourself as root with sudo, doas or pkexec",
		SilenceErrors: true,
	}

	rootCmd.AddCommand(whoami.NewCommand())
	rootCmd.AddCommand(env.NewCommand())
	rootCmd.AddCommand(backtrace.NewCommand())
	rootCmd.AddCommand(versionCmd.NewCommand(buildVersion(version, builtBy)))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode reports the failure and returns the status to exit with. The
// status of a mechanism that refused to escalate is passed through.
func exitCode(err error) int {
	var denied *sudo.DeniedError
	if errors.As(err, &denied) {
		log.WithField("status", denied.Status).Error("escalation denied")
		return denied.Status
	}
	if !errors.Is(err, internal.ErrSilence) {
		log.WithError(err).Error("command failed")
	}
	return 1
}

func buildVersion(version, builtBy string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("sudo-demo", "Restart yourself as root.", website),
		func(i *goversion.Info) {
			if version != "" {
				i.GitVersion = version
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}
