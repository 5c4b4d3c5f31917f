// Package osutils holds small OS queries the service checks at startup.
package osutils

import "github.com/rs/zerolog"

// WarnIfNotElevated logs a warning when low-level hooks will miss input for
// elevated windows. It returns the elevation state.
func WarnIfNotElevated(log *zerolog.Logger) bool {
	admin := IsAdmin()
	if !admin && HooksNeedElevation {
		log.Warn().Msg("not running as administrator; input sent to elevated windows will not be seen")
	}
	return admin
}
