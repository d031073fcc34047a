package monitor

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of events an EventCollector keeps.
const DefaultCapacity = 256

// EventCollector captures assertion events. It keeps the most recent
// events up to its capacity and counts all of them.
type EventCollector struct {
	mu       sync.RWMutex
	capacity int
	events   []Event
	handlers []func(Event)
	stats    CollectorStats
}

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Total     int           `json:"total"`
	Failures  int           `json:"failures"`
	Misuses   int           `json:"misuses"`
	Dropped   int           `json:"dropped"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// NewEventCollector creates a collector keeping up to capacity
// events. A non-positive capacity selects DefaultCapacity.
func NewEventCollector(capacity int) *EventCollector {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &EventCollector{
		capacity: capacity,
		events:   make([]Event, 0, min(capacity, 64)),
		stats:    CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
func (c *EventCollector) OnEvent(handler func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	if len(c.events) == c.capacity {
		copy(c.events, c.events[1:])
		c.events = c.events[:len(c.events)-1]
		c.stats.Dropped++
	}
	c.events = append(c.events, event)
	c.stats.Total++
	switch event.Type {
	case EventFailure:
		c.stats.Failures++
	case EventMisuse:
		c.stats.Misuses++
	}
	handlers := make([]func(Event), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// Events returns a copy of the retained events, oldest first.
func (c *EventCollector) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Event, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
