package papers

import (
	"sync"
	"time"

	"github.com/scriptorium-hq/scriptorium/internal/identity"
	"github.com/scriptorium-hq/scriptorium/internal/shared"
)

// Repository is the exclusive owner of the paper table and the per-paper
// comment logs. Ids are allocated sequentially from zero and never reused;
// existence is encoded solely by Version > 0. The mutex serializes access so
// a concurrent host observes the same atomicity a serialized one would.
type Repository struct {
	mu       sync.RWMutex
	nextID   int64
	records  map[int64]Paper
	comments map[int64][]Comment
	now      func() time.Time
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		records:  make(map[int64]Paper),
		comments: make(map[int64][]Comment),
		now:      time.Now,
	}
}

// Create allocates the next id and stores a fresh record at version 1 with
// all counters at zero. Field content is stored as given, empty or not.
func (r *Repository) Create(title, author, abstract, contentHash string) Paper {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := Paper{
		ID:          r.nextID,
		Title:       title,
		Author:      author,
		Abstract:    abstract,
		ContentHash: contentHash,
		Version:     1,
	}
	r.records[p.ID] = p
	r.nextID++
	return p
}

// Update replaces the descriptive fields and bumps the version by one.
// Counters and the comment log are untouched.
func (r *Repository) Update(id int64, title, author, abstract, contentHash string) (Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.records[id]
	if !p.Exists() {
		return Paper{}, shared.ErrNotFound
	}
	p.Title = title
	p.Author = author
	p.Abstract = abstract
	p.ContentHash = contentHash
	p.Version++
	r.records[id] = p
	return p, nil
}

// Delete removes the record and discards its entire comment log. The id is
// retired: nextID is never rewound.
func (r *Repository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.records[id].Exists() {
		return shared.ErrNotFound
	}
	delete(r.records, id)
	delete(r.comments, id)
	return nil
}

// AddComment appends to the paper's comment log and increments its comment
// count. Timestamps come from the injected clock, clamped so the log stays
// monotonic non-decreasing.
func (r *Repository) AddComment(id int64, author identity.Account, text string) (Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.records[id]
	if !p.Exists() {
		return Comment{}, shared.ErrNotFound
	}

	at := r.now().UTC()
	if log := r.comments[id]; len(log) > 0 && at.Before(log[len(log)-1].At) {
		at = log[len(log)-1].At
	}
	c := Comment{Author: author, Text: text, At: at}
	r.comments[id] = append(r.comments[id], c)
	p.CommentCount++
	r.records[id] = p
	return c, nil
}

// Comments returns the ordered comment log. It never fails: unknown and
// deleted ids yield an empty slice.
func (r *Repository) Comments(id int64) []Comment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.comments[id]
	out := make([]Comment, len(log))
	copy(out, log)
	return out
}

// RecordView increments the paper's view counter.
func (r *Repository) RecordView(id int64) (Paper, error) {
	return r.bump(id, func(p *Paper) { p.ViewCount++ })
}

// RecordDownload increments the paper's download counter.
func (r *Repository) RecordDownload(id int64) (Paper, error) {
	return r.bump(id, func(p *Paper) { p.DownloadCount++ })
}

// Get returns the record for a live paper.
func (r *Repository) Get(id int64) (Paper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.records[id]
	if !p.Exists() {
		return Paper{}, shared.ErrNotFound
	}
	return p, nil
}

// List returns a snapshot of all live papers ordered by id.
func (r *Repository) List() []Paper {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Paper, 0, len(r.records))
	for id := int64(0); id < r.nextID; id++ {
		if p, ok := r.records[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// NextID reports the id the next Create will allocate. It only ever grows.
func (r *Repository) NextID() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextID
}

// Stats sums the live records. Deleted papers no longer contribute.
func (r *Repository) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s Stats
	for _, p := range r.records {
		s.Papers++
		s.Comments += p.CommentCount
		s.Views += p.ViewCount
		s.Downloads += p.DownloadCount
	}
	return s
}

func (r *Repository) bump(id int64, apply func(*Paper)) (Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.records[id]
	if !p.Exists() {
		return Paper{}, shared.ErrNotFound
	}
	apply(&p)
	r.records[id] = p
	return p, nil
}
