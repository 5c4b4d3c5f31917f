// Package autostart registers the service to start on login.
package autostart

import (
	"errors"
	"os"
	"strings"
)

// ValueName is the registry value under the per-user Run key.
const ValueName = "GameMode"

// ErrUnsupportedPlatform is returned where there is no login registration.
var ErrUnsupportedPlatform = errors.New("autostart: unsupported platform")

// Enable registers the current executable, started with args, to run on login
func Enable(args ...string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	return enable(CommandLine(exe, args))
}

// Disable removes the login registration. It is not an error if none exists.
func Disable() error {
	return disable()
}

// Status returns the registered command line, or "" when not registered
func Status() (string, error) {
	return status()
}

// IsEnabled checks if auto-start is enabled
func IsEnabled() bool {
	cmd, err := status()
	return err == nil && cmd != ""
}

// CommandLine quotes exe and args the way the Run key expects.
func CommandLine(exe string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quote(exe))
	for _, a := range args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
