package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// timeFormat matches the timestamp layout used in SADET run-log files.
const timeFormat = "2006-01-02_15:04:05"

// Sink duplicates log messages into a per-run log file. The file is
// truncated on creation so a rerun never appends to a stale log.
type Sink struct {
	w io.WriteCloser
}

// NewSink creates (or truncates) the run-log file at path.
func NewSink(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}
	return &Sink{w: f}, nil
}

func (s *Sink) write(level, msg string) {
	if s == nil || s.w == nil {
		return
	}
	fmt.Fprintf(s.w, "%s [SADET - %s] %s\n", time.Now().Format(timeFormat), level, msg)
}

// Close flushes and closes the underlying log file.
func (s *Sink) Close() error {
	if s == nil || s.w == nil {
		return nil
	}
	return s.w.Close()
}

type Logger struct {
	Verbose bool
	Debug   bool
	Sink    *Sink
}

// Infof logs at INFO level. Terminal output is gated by Verbose; the run-log
// sink always receives the message.
func (l Logger) Infof(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	l.Sink.write("INFO", formatted)
	if l.Verbose {
		fmt.Fprint(os.Stdout, color.GreenString("[info] ")+formatted+"\n")
	}
}

func (l Logger) Debugf(msg string, args ...any) {
	if l.Debug {
		fmt.Fprintf(os.Stdout, color.CyanString("[debug] ")+msg+"\n", args...)
	}
}

func (l Logger) Warnf(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	l.Sink.write("WARNING", formatted)
	fmt.Fprint(os.Stderr, color.YellowString("[warn] ")+formatted+"\n")
}

// WarnfAlways is kept as an alias of Warnf so call sites read the same as in
// spinner-wrapped commands where regular output is suppressed.
func (l Logger) WarnfAlways(msg string, args ...any) {
	l.Warnf(msg, args...)
}

func (l Logger) Errorf(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	l.Sink.write("ERROR", formatted)
	fmt.Fprint(os.Stderr, color.RedString("[error] ")+formatted+"\n")
}

// ErrorfAndReturn logs the message at ERROR level and returns it as an error
// so commands can log and propagate in one statement.
func (l Logger) ErrorfAndReturn(msg string, args ...any) error {
	l.Errorf(msg, args...)
	return fmt.Errorf(msg, args...)
}
