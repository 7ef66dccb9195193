package cliopts

import (
	"io"

	"github.com/caarlos0/log"
	"github.com/loicsikidi/sudo/internal/logutil"
	"github.com/loicsikidi/sudo/pkg/sudo"
	"github.com/spf13/cobra"
)

// Escalation holds the flags shared by every command that escalates.
type Escalation struct {
	Doas    bool
	Polkit  bool
	Wrapper string
	Spawn   bool
	Verbose bool
}

// Bind registers the escalation flags on cmd.
func (o *Escalation) Bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.Doas, "doas", false, "Escalate with doas instead of sudo")
	cmd.Flags().BoolVar(&o.Polkit, "polkit", false, "Escalate with pkexec instead of sudo")
	cmd.Flags().StringVar(&o.Wrapper, "wrapper", "", "Escalate with a custom wrapper program")
	cmd.Flags().BoolVar(&o.Spawn, "spawn", false, "Run the escalated program as a child instead of replacing this process")
	cmd.Flags().BoolVarP(&o.Verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.MarkFlagsMutuallyExclusive("doas", "polkit", "wrapper")
}

// Logger returns the logger selected by the verbose flag.
func (o *Escalation) Logger(w io.Writer) *log.Logger {
	return logutil.New(w, o.Verbose)
}

// Escalator builds an escalator for cfg with the mechanism selected by the
// flags.
func (o *Escalation) Escalator(cfg sudo.Config) *sudo.Escalator {
	cfg.Spawn = cfg.Spawn || o.Spawn
	e := sudo.New(cfg)
	switch {
	case o.Wrapper != "":
		e.Wrapper(o.Wrapper)
	case o.Doas:
		e.Doas()
	case o.Polkit:
		e.Polkit()
	}
	return e
}
