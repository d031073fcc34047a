package logging

import "errors"

// MultiLogger forwards every call to each of its loggers in order.
type MultiLogger []Logger

// NewMultiLogger combines loggers into one.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	return MultiLogger(loggers)
}

func (m MultiLogger) each(fn func(Logger)) {
	for _, l := range m {
		fn(l)
	}
}

// Info logs at info level on every logger.
func (m MultiLogger) Info(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Info(msg, fields...) })
}

// Warn logs at warn level on every logger.
func (m MultiLogger) Warn(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Warn(msg, fields...) })
}

// Error logs at error level on every logger.
func (m MultiLogger) Error(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Error(msg, fields...) })
}

// Debug logs at debug level on every logger.
func (m MultiLogger) Debug(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Debug(msg, fields...) })
}

// WithFields returns a MultiLogger of children.
func (m MultiLogger) WithFields(fields ...Field) Logger {
	children := make(MultiLogger, len(m))
	for i, l := range m {
		children[i] = l.WithFields(fields...)
	}
	return children
}

// LogFailure records the failure on every logger.
func (m MultiLogger) LogFailure(failure FailureLog) {
	m.each(func(l Logger) { l.LogFailure(failure) })
}

// Close closes every logger and joins their errors.
func (m MultiLogger) Close() error {
	var errs []error
	m.each(func(l Logger) { errs = append(errs, l.Close()) })
	return errors.Join(errs...)
}
