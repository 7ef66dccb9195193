package internal

import "errors"

// ErrSilence is returned by commands that already reported the failure to the
// user and only need the process to exit with a non-zero status.
var ErrSilence = errors.New("silent error")
