package report

import "sync"

// Sink raises a failed assertion. It is the only place a failure
// leaves the engine.
type Sink interface {
	Fail(err *AssertionError)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(err *AssertionError)

// Fail calls f(err).
func (f SinkFunc) Fail(err *AssertionError) { f(err) }

// PanicSink panics with the *AssertionError.
type PanicSink struct{}

// Fail panics with err.
func (PanicSink) Fail(err *AssertionError) {
	panic(err)
}

// TestingT is the subset of testing.TB a TestingSink needs.
type TestingT interface {
	Helper()
	Fatal(args ...any)
}

// TestingSink fails the test with the report.
type TestingSink struct {
	T TestingT
}

// Fail reports err and stops the test.
func (s TestingSink) Fail(err *AssertionError) {
	s.T.Helper()
	s.T.Fatal(err.Error())
}

// RecordingSink keeps failures instead of raising them.
type RecordingSink struct {
	mu   sync.Mutex
	errs []*AssertionError
}

// Fail records err.
func (s *RecordingSink) Fail(err *AssertionError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

// Errors returns the recorded failures in order.
func (s *RecordingSink) Errors() []*AssertionError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*AssertionError, len(s.errs))
	copy(out, s.errs)
	return out
}

// Len returns the number of recorded failures.
func (s *RecordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}

// Reset drops all recorded failures.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = nil
}
