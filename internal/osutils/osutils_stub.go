//go:build !windows

package osutils

// HooksNeedElevation is false where there are no system-wide hooks.
const HooksNeedElevation = false

// IsAdmin is a stub for non-Windows platforms
func IsAdmin() bool {
	return false
}
