package audit

import (
	"context"
	"fmt"
)

// Repository provides the timeline reads the service needs.
type Repository interface {
	TimelineWindow(ctx context.Context, q TimelineQuery) ([]TimelineRow, error)
}

// TimelineFilters holds the caller-supplied timeline filters.
type TimelineFilters struct {
	Type     string
	Page     int
	PageSize int
}

// PagingInfo carries simple pagination metadata.
type PagingInfo struct {
	Page     int
	PageSize int
	PrevPage int
	NextPage int
	HasNext  bool
}

// Result bundles timeline rows with paging information.
type Result struct {
	Rows   []TimelineRow
	Paging PagingInfo
}

// Service coordinates audit timeline reads.
type Service struct {
	repo Repository
}

// NewService builds an audit timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of the event trail, newest first. It fetches
// one row beyond the page to detect whether a next page exists.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}

	rows, err := s.repo.TimelineWindow(ctx, TimelineQuery{
		Type:   filters.Type,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize + 1,
	})
	if err != nil {
		return Result{}, err
	}

	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}
