// Package debug provides conditional debug logging for cattree.
//
// Debug logging is enabled by setting the CATTREE_DEBUG environment variable:
//
//	CATTREE_DEBUG=1 cattree --source categorie_uniche.json
//
// When enabled, messages go to stderr with timestamps. When disabled (the
// default) every function here is a no-op. The TUI owns the terminal while it
// runs, so redirect stderr to a file when debugging it:
//
//	CATTREE_DEBUG=1 cattree 2>cattree.log
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("CATTREE_DEBUG") != "" {
		enabled = true
		logger = newLogger(os.Stderr)
	}
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[CT_DEBUG] ", log.Ltime|log.Lmicroseconds)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects debug output, mainly for tests.
func SetOutput(w io.Writer) {
	logger = newLogger(w)
}

// Log writes a debug message if debug logging is enabled.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("reload")()
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// AssertNoError panics when debug logging is enabled and err is not nil.
// Callers guard expensive checks with Enabled:
//
//	if debug.Enabled() {
//		debug.AssertNoError(t.CheckInvariants(), "toggle")
//	}
func AssertNoError(err error, context string) {
	if !enabled {
		return
	}
	if err != nil {
		logger.Printf("ASSERTION FAILED: %s: %v", context, err)
		panic(fmt.Sprintf("debug assertion failed: %s: %v", context, err))
	}
}
