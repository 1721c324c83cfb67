package ai

import "sync/atomic"

// debugLoggingEnabled gates per-tick debug logs of casters.
// Set via EnableDebugLogging() from main after parsing config.LogLevel.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables per-tick debug logging.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if per-tick debug logging is enabled.
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("cast skipped", "reason", reason)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
