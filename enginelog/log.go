// Package enginelog wires the engine's structured logging to apex/log
// rather than the stdlib log package.
package enginelog

import (
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

// Entry re-exports apex/log's Entry so callers don't need a second
// import just to hold onto a scoped logger.
type Entry = log.Entry

var initialized = false

// Init installs a text handler on stdout and sets the log level. Safe to
// call more than once; only the first call takes effect.
func Init(level string) {
	if initialized {
		return
	}
	initialized = true

	log.SetHandler(text.New(os.Stdout))
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// For scopes a logger to one engine component, e.g. For("dispatcher").
func For(component string) *log.Entry {
	return log.WithField("module", component)
}
