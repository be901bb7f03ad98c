// Package jobs carries the asynchronous side of event delivery: the
// registry produces notifications synchronously, the worker fans them out
// to webhook sinks with retry.
package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/scriptorium-hq/scriptorium/internal/events"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeEventDeliver is the task type for webhook event delivery.
	TaskTypeEventDeliver = "event:deliver"
)

// NewEventDeliverTask wraps an event into an asynq task.
func NewEventDeliverTask(event events.Event) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeEventDeliver, data), nil
}

// EventPublisher implements events.Publisher by enqueueing delivery tasks.
type EventPublisher struct {
	client *asynq.Client
}

// NewEventPublisher constructs an EventPublisher over an asynq client.
func NewEventPublisher(client *asynq.Client) *EventPublisher {
	return &EventPublisher{client: client}
}

// Publish implements events.Publisher.
func (p *EventPublisher) Publish(ctx context.Context, event events.Event) error {
	if p == nil || p.client == nil {
		return nil
	}
	task, err := NewEventDeliverTask(event)
	if err != nil {
		return fmt.Errorf("jobs: build deliver task: %w", err)
	}
	_, err = p.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("jobs: enqueue %s: %w", event.Type, err)
	}
	return nil
}

// Deliverer posts events to the configured webhook sinks.
type Deliverer struct {
	urls   []string
	client *http.Client
	logger *slog.Logger
}

// NewDeliverer constructs a Deliverer.
func NewDeliverer(urls []string, logger *slog.Logger) *Deliverer {
	return &Deliverer{
		urls:   urls,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// HandleEventDeliverTask processes TaskTypeEventDeliver tasks. A sink
// failure returns an error so asynq retries; a malformed payload is dropped.
func (d *Deliverer) HandleEventDeliverTask(ctx context.Context, t *asynq.Task) error {
	var event events.Event
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return asynq.SkipRetry
	}
	var errs []error
	for _, url := range d.urls {
		if err := d.post(ctx, url, t.Payload()); err != nil {
			if d.logger != nil {
				d.logger.Warn("webhook delivery failed",
					slog.String("url", url), slog.String("event", event.ID), slog.Any("error", err))
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Deliverer) post(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("jobs: webhook %s returned %d", url, resp.StatusCode)
	}
	return nil
}
