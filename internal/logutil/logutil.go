package logutil

import (
	"io"
	"time"

	"github.com/caarlos0/log"
	"github.com/loicsikidi/sudo/internal/privilege"
)

// New returns a logger writing to w. Debug messages are only emitted when
// verbose is set.
func New(w io.Writer, verbose bool) *log.Logger {
	logger := log.New(w)
	logger.Level = log.InfoLevel
	if verbose {
		logger.Level = log.DebugLevel
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// LogCredentials logs the identity of the process under label.
func LogCredentials(logger *log.Logger, label string, creds privilege.Credentials) {
	logger.IncreasePadding()
	logger.WithField("uid", creds.UID).
		WithField("euid", creds.EUID).
		WithField("gid", creds.GID).
		WithField("egid", creds.EGID).
		Info(label)
	logger.ResetPadding()
}

// LogDuration logs how long the step started at start took.
func LogDuration(logger *log.Logger, start time.Time) {
	logger.IncreasePadding()
	logger.Debugf("took: %s", time.Since(start).Round(time.Millisecond))
	logger.ResetPadding()
}
