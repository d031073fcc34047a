package report

import (
	"time"

	"digital.vasic.equate/pkg/logging"
	"digital.vasic.equate/pkg/metrics"
	"digital.vasic.equate/pkg/monitor"
	"digital.vasic.equate/pkg/render"
)

// Observer is told about a failure before it is raised.
type Observer interface {
	Observe(err *AssertionError) error
}

// MisuseObserver is an Observer that also wants malformed
// assertions: syntax, binding and type errors.
type MisuseObserver interface {
	Observer
	Misuse(loc render.Location, expression string, err error) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(err *AssertionError) error

// Observe calls f(err).
func (f ObserverFunc) Observe(err *AssertionError) error { return f(err) }

// LogObserver writes failures to a logger.
type LogObserver struct {
	Logger logging.Logger
}

// Observe records the failure on the logger.
func (o LogObserver) Observe(err *AssertionError) error {
	o.Logger.LogFailure(logging.FailureLog{
		Timestamp:  err.Time.Format(time.RFC3339Nano),
		File:       err.Location.File,
		Line:       err.Location.Line,
		Col:        err.Location.Col,
		Expression: err.Expression,
		Message:    err.Message,
		Report:     err.Report,
	})
	return nil
}

// Misuse logs the malformed assertion as a warning.
func (o LogObserver) Misuse(loc render.Location, expression string, err error) error {
	o.Logger.Warn("malformed assertion",
		logging.StringField("location", loc.String()),
		logging.StringField("expression", expression),
		logging.ErrorField(err),
	)
	return nil
}

// MetricsObserver counts failures per call site.
type MetricsObserver struct {
	Metrics metrics.AssertionMetrics
}

// Observe counts the failure against its location.
func (o MetricsObserver) Observe(err *AssertionError) error {
	o.Metrics.RecordFailure(err.Location.String())
	return nil
}

// MonitorObserver emits failures and misuse to a live collector.
type MonitorObserver struct {
	Collector *monitor.EventCollector
}

// Observe emits a failure event.
func (o MonitorObserver) Observe(err *AssertionError) error {
	o.Collector.Emit(monitor.Event{
		Type:       monitor.EventFailure,
		File:       err.Location.File,
		Line:       err.Location.Line,
		Col:        err.Location.Col,
		Expression: err.Expression,
		Message:    err.Message,
		Report:     err.Report,
		Timestamp:  err.Time,
	})
	return nil
}

// Misuse emits a misuse event.
func (o MonitorObserver) Misuse(loc render.Location, expression string, err error) error {
	o.Collector.Emit(monitor.Event{
		Type:       monitor.EventMisuse,
		File:       loc.File,
		Line:       loc.Line,
		Col:        loc.Col,
		Expression: expression,
		Message:    err.Error(),
	})
	return nil
}

// HistoryObserver appends failures to a JSON Lines history file.
type HistoryObserver struct {
	Path string
}

// Observe appends the failure to the history file.
func (o HistoryObserver) Observe(err *AssertionError) error {
	return AppendToHistory(o.Path, err)
}

// ArchiveObserver stores the latest failure of each call site.
type ArchiveObserver struct {
	Archive *Archive
}

// Observe replaces the archived failure of the call site.
func (o ArchiveObserver) Observe(err *AssertionError) error {
	return o.Archive.Put(NewArchiveRecord(err))
}
