package realtime

import (
	"sync/atomic"
	"time"
)

// Metrics tracks hub statistics using atomic operations for thread-safety
type Metrics struct {
	EventsPublished  atomic.Int64
	EventsDropped    atomic.Int64
	Subscriptions    atomic.Int64
	ConnectedClients atomic.Int32
	StartTime        time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// IncEventsPublished increments the delivered-events counter
func (m *Metrics) IncEventsPublished() {
	m.EventsPublished.Add(1)
}

// IncEventsDropped increments the dropped-events counter
func (m *Metrics) IncEventsDropped() {
	m.EventsDropped.Add(1)
}

// IncSubscriptions increments the subscriptions counter
func (m *Metrics) IncSubscriptions() {
	m.Subscriptions.Add(1)
}

// SetConnectedClients sets the current connected clients count
func (m *Metrics) SetConnectedClients(count int32) {
	m.ConnectedClients.Store(count)
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	EventsPublished  int64     `json:"events_published"`
	EventsDropped    int64     `json:"events_dropped"`
	Subscriptions    int64     `json:"subscriptions"`
	ConnectedClients int32     `json:"connected_clients"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// Snapshot returns a snapshot of current metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsPublished:  m.EventsPublished.Load(),
		EventsDropped:    m.EventsDropped.Load(),
		Subscriptions:    m.Subscriptions.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).String(),
	}
}
