// Package debug provides debug-gated logging on top of the standard logger.
package debug

import "log"

// Enabled controls whether debug logging is active.
// Set once at startup from the configured log level.
var Enabled bool

// Logf logs a message only if debug mode is enabled.
func Logf(format string, args ...interface{}) {
	if Enabled {
		log.Printf(format, args...)
	}
}
