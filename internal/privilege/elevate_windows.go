//go:build windows

package privilege

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

func init() {
	platform = platformImpl{
		credentials: credentialsWindows,
		executable:  executableWindows,
		replaces:    false,
		builtins:    false,
	}
}

// credentialsWindows maps the elevation of the process token onto the unix
// shaped Credentials.
func credentialsWindows() (Credentials, error) {
	token := windows.GetCurrentProcessToken()
	if token.IsElevated() {
		return Credentials{UID: 0, EUID: 0, GID: 0, EGID: 0}, nil
	}
	return Credentials{UID: -1, EUID: -1, GID: -1, EGID: -1}, nil
}

func executableWindows(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() || !strings.EqualFold(filepath.Ext(path), ".exe") {
		return fmt.Errorf("%s: %w", path, ErrNotExecutable)
	}
	return nil
}
