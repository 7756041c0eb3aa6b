// Package envconfig reads the environment variables that tune sparsify.
package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// LogLevel returns the log level selected by SPARSIFY_DEBUG.
//
// A true boolean selects Debug. An integer n selects slog.Level(-4*n), so
// SPARSIFY_DEBUG=2 enables levels below Debug. Anything else leaves Info.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("SPARSIFY_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// NumWorkers returns the worker count for parallel importance scoring from
// SPARSIFY_NUM_WORKERS. Zero means one worker per CPU.
var NumWorkers = Uint("SPARSIFY_NUM_WORKERS", 0)

// Uint returns a getter for an unsigned integer variable with a default.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Var returns an environment variable stripped of surrounding quotes and
// whitespace.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
