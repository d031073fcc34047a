package report

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"digital.vasic.equate/pkg/logging"
	"digital.vasic.equate/pkg/render"
)

// Dispatcher is a Sink that notifies observers before raising
// through a terminal sink. Observer errors are logged and never
// replace the failure.
type Dispatcher struct {
	mu        sync.RWMutex
	sink      Sink
	observers []Observer
	logger    logging.Logger
}

// NewDispatcher creates a dispatcher raising through sink. A nil
// sink selects PanicSink.
func NewDispatcher(sink Sink, observers ...Observer) *Dispatcher {
	if sink == nil {
		sink = PanicSink{}
	}
	return &Dispatcher{
		sink:      sink,
		observers: observers,
		logger:    logging.NullLogger{},
	}
}

// SetLogger sets the logger receiving observer errors.
func (d *Dispatcher) SetLogger(l logging.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l == nil {
		l = logging.NullLogger{}
	}
	d.logger = l
}

// AddObserver registers an observer.
func (d *Dispatcher) AddObserver(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, o)
}

// Observers returns the number of registered observers.
func (d *Dispatcher) Observers() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// Fail notifies every observer, waits for them, then raises err
// through the terminal sink.
func (d *Dispatcher) Fail(err *AssertionError) {
	d.Raise(err, nil)
}

// Raise is Fail with a terminal sink for this failure only. A nil
// sink selects the dispatcher's own.
func (d *Dispatcher) Raise(err *AssertionError, sink Sink) {
	d.notify(func(o Observer) error { return o.Observe(err) })

	if sink == nil {
		d.mu.RLock()
		sink = d.sink
		d.mu.RUnlock()
	}
	sink.Fail(err)
}

// Misuse notifies the observers that track malformed assertions.
// It does not raise.
func (d *Dispatcher) Misuse(loc render.Location, expression string, err error) {
	d.notify(func(o Observer) error {
		if m, ok := o.(MisuseObserver); ok {
			return m.Misuse(loc, expression, err)
		}
		return nil
	})
}

func (d *Dispatcher) notify(fn func(Observer) error) {
	d.mu.RLock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	logger := d.logger
	d.mu.RUnlock()

	var g errgroup.Group
	for _, o := range observers {
		o := o
		g.Go(func() error {
			if err := fn(o); err != nil {
				logger.Warn("report observer failed", logging.ErrorField(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
