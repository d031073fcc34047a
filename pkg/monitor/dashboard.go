package monitor

import (
	"sort"
	"sync"
	"time"
)

// Dashboard aggregates events per call site.
type Dashboard struct {
	mu        sync.RWMutex
	startTime time.Time
	sites     map[string]*SiteState
}

// SiteState is the state of one assertion call site.
type SiteState struct {
	Location   string    `json:"location"`
	Expression string    `json:"expression"`
	Failures   int       `json:"failures"`
	Misuses    int       `json:"misuses"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	LastReport string    `json:"last_report,omitempty"`
}

// DashboardSnapshot is a point-in-time copy of a Dashboard.
type DashboardSnapshot struct {
	StartTime time.Time   `json:"start_time"`
	Elapsed   string      `json:"elapsed"`
	Failures  int         `json:"failures"`
	Misuses   int         `json:"misuses"`
	Sites     []SiteState `json:"sites"`
}

// NewDashboard creates an empty dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{
		startTime: time.Now(),
		sites:     make(map[string]*SiteState),
	}
}

// Update folds an event into the dashboard.
func (d *Dashboard) Update(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	loc := event.Location()
	site, ok := d.sites[loc]
	if !ok {
		site = &SiteState{
			Location:  loc,
			FirstSeen: event.Timestamp,
		}
		d.sites[loc] = site
	}
	site.Expression = event.Expression
	site.LastSeen = event.Timestamp
	switch event.Type {
	case EventFailure:
		site.Failures++
		site.LastReport = event.Report
	case EventMisuse:
		site.Misuses++
	}
}

// Snapshot returns the sites ordered by failure count, most failing
// first, then by location.
func (d *Dashboard) Snapshot() DashboardSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := DashboardSnapshot{
		StartTime: d.startTime,
		Elapsed:   time.Since(d.startTime).Round(time.Millisecond).String(),
		Sites:     make([]SiteState, 0, len(d.sites)),
	}
	for _, s := range d.sites {
		snap.Sites = append(snap.Sites, *s)
		snap.Failures += s.Failures
		snap.Misuses += s.Misuses
	}
	sort.Slice(snap.Sites, func(i, j int) bool {
		a, b := snap.Sites[i], snap.Sites[j]
		if a.Failures != b.Failures {
			return a.Failures > b.Failures
		}
		return a.Location < b.Location
	})
	return snap
}

// BuildDashboard creates a Dashboard by replaying the events of a
// collector.
func BuildDashboard(collector *EventCollector) *Dashboard {
	d := NewDashboard()
	for _, event := range collector.Events() {
		d.Update(event)
	}
	return d
}
