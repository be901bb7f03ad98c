// Package audit persists every emitted registry event into Postgres and
// serves a paged timeline over them. The trail is an observer: a nil store
// disables recording without touching registry semantics.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scriptorium-hq/scriptorium/internal/events"
)

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

// Querier is the slice of pgxpool.Pool the store uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store writes and reads the audit_events table.
type Store struct {
	db Querier
}

// NewStore constructs a Store backed by the provided pool.
func NewStore(pool *pgxpool.Pool) *Store {
	s := &Store{}
	if pool != nil {
		s.db = pool
	}
	return s
}

// Publish implements events.Publisher by appending the event to the trail.
// Replayed event ids are ignored so redelivery stays idempotent.
func (s *Store) Publish(ctx context.Context, event events.Event) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO audit_events (id, event_type, payload, occurred_at) VALUES ($1, $2, $3, $4)`,
		event.ID, event.Type, []byte(event.Payload), event.At)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil
		}
		return err
	}
	return nil
}

// TimelineWindow returns one page of events, newest first.
func (s *Store) TimelineWindow(ctx context.Context, q TimelineQuery) ([]TimelineRow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, event_type, payload, occurred_at
		 FROM audit_events
		 WHERE ($1 = '' OR event_type = $1)
		 ORDER BY occurred_at DESC, id DESC
		 OFFSET $2 LIMIT $3`,
		q.Type, q.Offset, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimelineRow
	for rows.Next() {
		var row TimelineRow
		var payload []byte
		if err := rows.Scan(&row.ID, &row.Type, &payload, &row.At); err != nil {
			return nil, err
		}
		row.Payload = json.RawMessage(payload)
		out = append(out, row)
	}
	return out, rows.Err()
}

// TimelineQuery narrows a timeline read.
type TimelineQuery struct {
	Type   string
	Offset int
	Limit  int
}

// TimelineRow is one recorded event.
type TimelineRow struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}
