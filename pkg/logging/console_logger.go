package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// levelColors maps each level to the colour of its tag.
var levelColors = map[LogLevel]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgBlue),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

var dim = color.New(color.FgHiBlack)

// ConsoleLogger writes human-readable lines of the form
//
//	15:04:05 [LEVEL] message {k=v, k=v}
//
// Colour follows github.com/fatih/color, which turns itself off
// when the output is not a terminal or NO_COLOR is set.
type ConsoleLogger struct {
	mu      *sync.Mutex
	out     io.Writer
	verbose bool
	fields  fieldSet
}

// NewConsoleLogger creates a console logger on stderr. Debug
// lines are written only when verbose is set.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stderr, verbose)
}

// NewConsoleLoggerTo creates a console logger writing to w.
func NewConsoleLoggerTo(w io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{mu: &sync.Mutex{}, out: w, verbose: verbose}
}

func (c *ConsoleLogger) write(level LogLevel, msg string, fields []Field) {
	if level == LevelDebug && !c.verbose {
		return
	}

	line := fmt.Sprintf("%s [%s] %s",
		dim.Sprint(time.Now().Format("15:04:05")),
		levelColors[level].Sprintf("%-5s", level),
		msg,
	)
	if all := c.fields.with(fields...); len(all) > 0 {
		line += " " + dim.Sprintf("{%s}", all.format())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// Info logs at info level.
func (c *ConsoleLogger) Info(msg string, fields ...Field) { c.write(LevelInfo, msg, fields) }

// Warn logs at warn level.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) { c.write(LevelWarn, msg, fields) }

// Error logs at error level.
func (c *ConsoleLogger) Error(msg string, fields ...Field) { c.write(LevelError, msg, fields) }

// Debug logs at debug level when verbose.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) { c.write(LevelDebug, msg, fields) }

// WithFields returns a child sharing the output and its lock.
func (c *ConsoleLogger) WithFields(fields ...Field) Logger {
	child := *c
	child.fields = c.fields.with(fields...)
	return &child
}

// LogFailure writes an error line followed by the report, each
// report line indented by four spaces.
func (c *ConsoleLogger) LogFailure(failure FailureLog) {
	c.write(LevelError, "assertion failed", failure.Fields())
	if failure.Report == "" {
		return
	}

	var sb strings.Builder
	for _, line := range strings.Split(failure.Report, "\n") {
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.out, sb.String())
}

// Close does nothing; the output belongs to the caller.
func (c *ConsoleLogger) Close() error { return nil }
