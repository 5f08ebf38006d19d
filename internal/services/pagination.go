package services

import "github.com/mrlokans/bookshelf/internal/config"

// PageRequest asks for a 1-based page. Zero values mean "first page" and
// "default size".
type PageRequest struct {
	Page     int
	PageSize int
}

// Page is one slice of an ordered collection. Next and Previous are page
// numbers, nil at either end.
type Page[T any] struct {
	Count    int64
	Page     int
	PageSize int
	Next     *int
	Previous *int
	Results  []T
}

// Paginator clamps page requests to the configured sizes.
type Paginator struct {
	DefaultSize int
	MaxSize     int
}

// NewPaginator creates a paginator from configuration.
func NewPaginator(cfg config.Pagination) Paginator {
	p := Paginator{DefaultSize: cfg.PageSize, MaxSize: cfg.MaxPageSize}
	if p.DefaultSize <= 0 {
		p.DefaultSize = 10
	}
	if p.MaxSize < p.DefaultSize {
		p.MaxSize = p.DefaultSize
	}
	return p
}

// Window returns the normalized request plus limit and offset for it.
// A negative page is ErrInvalidPage.
func (p Paginator) Window(req PageRequest) (PageRequest, int, int, error) {
	if req.Page < 0 {
		return req, 0, 0, ErrInvalidPage
	}
	if req.Page == 0 {
		req.Page = 1
	}
	switch {
	case req.PageSize <= 0:
		req.PageSize = p.DefaultSize
	case req.PageSize > p.MaxSize:
		req.PageSize = p.MaxSize
	}
	return req, req.PageSize, (req.Page - 1) * req.PageSize, nil
}

// NewPage assembles a page. Asking past the last page is ErrInvalidPage,
// except for page 1 of an empty collection.
func NewPage[T any](req PageRequest, count int64, results []T) (*Page[T], error) {
	lastPage := int((count + int64(req.PageSize) - 1) / int64(req.PageSize))
	if lastPage == 0 {
		lastPage = 1
	}
	if req.Page > lastPage {
		return nil, ErrInvalidPage
	}

	page := &Page[T]{
		Count:    count,
		Page:     req.Page,
		PageSize: req.PageSize,
		Results:  results,
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	if req.Page < lastPage {
		next := req.Page + 1
		page.Next = &next
	}
	if req.Page > 1 {
		prev := req.Page - 1
		page.Previous = &prev
	}
	return page, nil
}
