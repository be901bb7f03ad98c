package papers

import (
	"context"
	"log/slog"

	"github.com/scriptorium-hq/scriptorium/internal/events"
	"github.com/scriptorium-hq/scriptorium/internal/identity"
	"github.com/scriptorium-hq/scriptorium/internal/roles"
	"github.com/scriptorium-hq/scriptorium/internal/shared"
)

// RoleChecker answers authorization queries for paper operations.
type RoleChecker interface {
	Has(account identity.Account, role roles.Role) bool
	HasAll(account identity.Account, required ...roles.Role) bool
}

// Service gates every mutation behind the role registry, applies it to the
// repository and emits the matching notification. Authorization is checked
// before any state is touched, so a rejection has no side effects.
type Service struct {
	repo      *Repository
	roles     RoleChecker
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo *Repository, checker RoleChecker, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{repo: repo, roles: checker, publisher: publisher, logger: logger}
}

// Create stores a new paper. Requires Admin. No content validation is
// performed; empty fields are accepted as given.
func (s *Service) Create(ctx context.Context, acting identity.Account, title, author, abstract, contentHash string) (Paper, error) {
	if !s.roles.Has(acting, roles.Admin) {
		return Paper{}, shared.ErrUnauthorized
	}
	p := s.repo.Create(title, author, abstract, contentHash)
	s.emit(ctx, events.TypePaperAdded, events.PaperAdded{PaperID: p.ID, Title: p.Title, Author: p.Author})
	return p, nil
}

// Update replaces the descriptive fields of a live paper. Requires Admin.
func (s *Service) Update(ctx context.Context, acting identity.Account, id int64, title, author, abstract, contentHash string) (Paper, error) {
	if !s.roles.Has(acting, roles.Admin) {
		return Paper{}, shared.ErrUnauthorized
	}
	p, err := s.repo.Update(id, title, author, abstract, contentHash)
	if err != nil {
		return Paper{}, err
	}
	s.emit(ctx, events.TypePaperUpdated, events.PaperUpdated{PaperID: p.ID, Title: p.Title, Author: p.Author})
	return p, nil
}

// Delete removes a live paper and its comment log. Requires Admin.
func (s *Service) Delete(ctx context.Context, acting identity.Account, id int64) error {
	if !s.roles.Has(acting, roles.Admin) {
		return shared.ErrUnauthorized
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.emit(ctx, events.TypePaperDeleted, events.PaperDeleted{PaperID: id})
	return nil
}

// AddComment appends a comment to a live paper. Requires the acting account
// to hold both Contributor and Reviewer.
func (s *Service) AddComment(ctx context.Context, acting identity.Account, id int64, text string) (Comment, error) {
	if !s.roles.HasAll(acting, roles.Contributor, roles.Reviewer) {
		return Comment{}, shared.ErrUnauthorized
	}
	c, err := s.repo.AddComment(id, acting, text)
	if err != nil {
		return Comment{}, err
	}
	s.emit(ctx, events.TypeCommentAdded, events.CommentAdded{PaperID: id, Account: acting, Text: text})
	return c, nil
}

// Comments returns the ordered comment log. Open read: no role, no
// existence check, empty for unknown ids.
func (s *Service) Comments(_ context.Context, id int64) []Comment {
	return s.repo.Comments(id)
}

// RecordView increments the view counter of a live paper. Open to any
// authenticated caller.
func (s *Service) RecordView(ctx context.Context, caller identity.Account, id int64) error {
	if _, err := s.repo.RecordView(id); err != nil {
		return err
	}
	s.emit(ctx, events.TypePaperViewed, events.PaperViewed{PaperID: id, Account: caller})
	return nil
}

// RecordDownload increments the download counter of a live paper. Open to
// any authenticated caller.
func (s *Service) RecordDownload(ctx context.Context, caller identity.Account, id int64) error {
	if _, err := s.repo.RecordDownload(id); err != nil {
		return err
	}
	s.emit(ctx, events.TypePaperDownloaded, events.PaperDownloaded{PaperID: id, Account: caller})
	return nil
}

// Get returns a live paper record. Open read.
func (s *Service) Get(_ context.Context, id int64) (Paper, error) {
	return s.repo.Get(id)
}

// List returns all live papers ordered by id. Open read.
func (s *Service) List(_ context.Context) []Paper {
	return s.repo.List()
}

func (s *Service) emit(ctx context.Context, eventType string, payload any) {
	event, err := events.New(eventType, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("publish paper event", slog.String("type", eventType), slog.Any("error", err))
	}
}
