package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptorium-hq/scriptorium/internal/events"
)

func deliverTask(t *testing.T) (*asynq.Task, events.Event) {
	t.Helper()
	ev, err := events.New(events.TypePaperAdded, events.PaperAdded{PaperID: 0, Title: "A", Author: "B"})
	require.NoError(t, err)
	task, err := NewEventDeliverTask(ev)
	require.NoError(t, err)
	return task, ev
}

func TestDelivererPostsToSinks(t *testing.T) {
	var received atomic.Int32
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		body, _ = io.ReadAll(r.Body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	task, ev := deliverTask(t)
	d := NewDeliverer([]string{srv.URL}, nil)
	require.NoError(t, d.HandleEventDeliverTask(context.Background(), task))
	require.Equal(t, int32(1), received.Load())

	var got events.Event
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, ev.ID, got.ID)
}

func TestDelivererReturnsErrorForFailedSink(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ok.Close)
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)

	task, _ := deliverTask(t)
	d := NewDeliverer([]string{ok.URL, failing.URL}, nil)
	err := d.HandleEventDeliverTask(context.Background(), task)
	require.Error(t, err)
}

func TestDelivererDropsMalformedPayload(t *testing.T) {
	d := NewDeliverer(nil, nil)
	task := asynq.NewTask(TaskTypeEventDeliver, []byte("not json"))
	err := d.HandleEventDeliverTask(context.Background(), task)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestNewWorkerRequiresDeliverer(t *testing.T) {
	_, err := NewWorker(WorkerConfig{})
	assert.Error(t, err)
}
