package observability

import (
	"context"

	"github.com/scriptorium-hq/scriptorium/internal/events"
)

// EventCounter implements events.Publisher by counting emitted
// notifications per type. It never fails.
type EventCounter struct {
	metrics *Metrics
}

// NewEventCounter builds an EventCounter over the shared metric set.
func NewEventCounter(metrics *Metrics) *EventCounter {
	return &EventCounter{metrics: metrics}
}

// Publish implements events.Publisher.
func (c *EventCounter) Publish(_ context.Context, event events.Event) error {
	if c != nil {
		c.metrics.CountEvent(event.Type)
	}
	return nil
}
