// Package common provides shared utilities for integration plugins.
package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// VerboseLogger writes template loading messages to an io.Writer.
type VerboseLogger struct {
	out io.Writer
}

// NewVerboseLogger creates a new VerboseLogger that writes to the given writer.
func NewVerboseLogger(out io.Writer) *VerboseLogger {
	return &VerboseLogger{out: out}
}

// Printf writes a formatted message followed by a newline.
func (l *VerboseLogger) Printf(format string, v ...any) {
	fmt.Fprintf(l.out, format+"\n", v...)
}

// HCLogPrinter adapts an hclog.Logger to the Printf interface used by the
// template loader, logging each message at debug level.
type HCLogPrinter struct {
	logger hclog.Logger
}

// NewHCLogPrinter wraps logger. A nil logger discards everything.
func NewHCLogPrinter(logger hclog.Logger) *HCLogPrinter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &HCLogPrinter{logger: logger}
}

// Printf implements the template loader's Logger.
func (p *HCLogPrinter) Printf(format string, v ...any) {
	p.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
