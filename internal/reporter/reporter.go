// Package reporter is the host diagnostic channel.
//
// Core subsystems report failures and warnings here rather than
// formatting output themselves. The reporter keeps running counts so
// callers can tell after a phase whether anything went wrong.
package reporter

import (
	"fmt"
	"sync/atomic"

	"github.com/dshills/flowscope/internal/logging"
)

// Reporter routes diagnostics to the host log and keeps error counts.
type Reporter struct {
	log *logging.Logger

	errorCount   atomic.Int64
	warningCount atomic.Int64
}

// New creates a reporter writing through the given logger.
// A nil logger discards output but still counts.
func New(log *logging.Logger) *Reporter {
	if log == nil {
		log = logging.New(nil, "fatal")
	}
	return &Reporter{log: log.Sub("reporter")}
}

// Error reports a failure.
func (r *Reporter) Error(format string, args ...any) {
	r.errorCount.Add(1)
	r.log.Error().Msg(fmt.Sprintf(format, args...))
}

// Warning reports a non-fatal problem.
func (r *Reporter) Warning(format string, args ...any) {
	r.warningCount.Add(1)
	r.log.Warn().Msg(fmt.Sprintf(format, args...))
}

// Info reports progress information.
func (r *Reporter) Info(format string, args ...any) {
	r.log.Info().Msg(fmt.Sprintf(format, args...))
}

// Errors returns the number of errors reported so far.
func (r *Reporter) Errors() int64 { return r.errorCount.Load() }

// Warnings returns the number of warnings reported so far.
func (r *Reporter) Warnings() int64 { return r.warningCount.Load() }
