package events

import (
	"context"
	"errors"
)

// Publisher broadcasts events to external observers. Implementations are
// fire and forget: a returned error is logged by the caller, never surfaced
// to the operation that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every configured publisher.
type Multi []Publisher

// Publish implements Publisher. Every publisher is attempted; errors are
// joined so one failing sink does not starve the others.
func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
