package audit

import (
	"context"
	"fmt"
)

// QueryStore provides read access over the audit trail.
type QueryStore interface {
	ListWindow(ctx context.Context, filters Filters, limit, offset int) ([]Record, error)
	ListAll(ctx context.Context, filters Filters) ([]Record, error)
}

// Service coordinates read-only audit queries for reporting pages.
type Service struct {
	store QueryStore
}

// NewService builds the query service.
func NewService(store QueryStore) *Service {
	return &Service{store: store}
}

// List fetches one page of records matching the filters. One extra row is
// requested to detect whether a next page exists.
func (s *Service) List(ctx context.Context, filters Filters) (Result, error) {
	if s.store == nil {
		return Result{}, fmt.Errorf("audit: store not configured")
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
	offset := (page - 1) * pageSize

	rows, err := s.store.ListWindow(ctx, filters, pageSize+1, offset)
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

// Export fetches every record matching the filters, without paging.
func (s *Service) Export(ctx context.Context, filters Filters) ([]Record, error) {
	if s.store == nil {
		return nil, fmt.Errorf("audit: store not configured")
	}
	return s.store.ListAll(ctx, filters)
}
