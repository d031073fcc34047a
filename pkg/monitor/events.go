// Package monitor collects assertion events and streams them to
// live observers over WebSocket.
package monitor

import (
	"strconv"
	"time"
)

// EventType represents the type of assertion event.
type EventType string

const (
	// EventFailure is a failed assertion.
	EventFailure EventType = "failure"
	// EventMisuse is a malformed assertion: a syntax, binding or
	// type error found before evaluation.
	EventMisuse EventType = "misuse"
)

// Event is one reported assertion.
type Event struct {
	Type       EventType `json:"type"`
	File       string    `json:"file"`
	Line       int       `json:"line"`
	Col        int       `json:"col"`
	Expression string    `json:"expression"`
	Message    string    `json:"message,omitempty"`
	Report     string    `json:"report,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Location returns the event's call site as file:line:col.
func (e Event) Location() string {
	return e.File + ":" + strconv.Itoa(e.Line) + ":" + strconv.Itoa(e.Col)
}
