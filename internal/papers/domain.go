// Package papers owns paper records, their append-only comment logs and the
// view/download counters. Every mutation is gated by the role registry and
// is atomic: a rejected operation leaves no trace.
package papers

import (
	"time"

	"github.com/scriptorium-hq/scriptorium/internal/identity"
)

// Paper is a versioned metadata record with an external content reference.
// Version 0 is the sentinel for "does not exist": a Paper is never stored
// with Version 0, so the zero value doubles as the not-found marker.
type Paper struct {
	ID            int64
	Title         string
	Author        string
	Abstract      string
	ContentHash   string
	Version       int64
	CommentCount  int64
	ViewCount     int64
	DownloadCount int64
}

// Exists reports whether the record denotes a live paper.
func (p Paper) Exists() bool {
	return p.Version > 0
}

// Stats is a point-in-time snapshot of the repository totals.
type Stats struct {
	Papers    int64
	Comments  int64
	Views     int64
	Downloads int64
}

// Comment is an immutable entry in a paper's append-only log. Comments are
// identified by position; they are never edited or removed individually.
type Comment struct {
	Author identity.Account
	Text   string
	At     time.Time
}
