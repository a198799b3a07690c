package tgtg

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	defaultMaxPages = 10
	defaultPageSize = 20
)

// Reasons a pagination run stopped.
const (
	StopNoMoreResults = "no_more_results"
	StopShortPage     = "short_page"
	StopMaxPages      = "max_pages"
)

// Paginator walks the search endpoint page by page.
type Paginator struct {
	searcher Searcher
	log      *slog.Logger
	maxPages int
}

// PaginatorOption configures the Paginator.
type PaginatorOption func(*Paginator)

// WithMaxPages overrides the default max pages.
func WithMaxPages(n int) PaginatorOption {
	return func(p *Paginator) {
		p.maxPages = n
	}
}

// WithPaginatorLogger sets the logger.
func WithPaginatorLogger(l *slog.Logger) PaginatorOption {
	return func(p *Paginator) {
		p.log = l
	}
}

// NewPaginator creates a new Paginator.
func NewPaginator(s Searcher, opts ...PaginatorOption) *Paginator {
	p := &Paginator{
		searcher: s,
		log:      slog.Default(),
		maxPages: defaultMaxPages,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PaginateResult holds the result of a paginated search.
type PaginateResult struct {
	Items     []Item
	PagesUsed int
	StoppedAt string
}

// Paginate fetches pages starting at criteria.PageNumber (1 when unset),
// stopping on an empty page, a page shorter than the page size, or after
// maxPages requests. The caller's criteria is not modified.
func (p *Paginator) Paginate(ctx context.Context, criteria Criteria) (*PaginateResult, error) {
	req := criteria
	if req.PageNumber < 1 {
		req.PageNumber = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}

	result := &PaginateResult{}

	for range p.maxPages {
		page, err := p.searcher.SearchItems(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("searching page %d: %w", req.PageNumber, err)
		}

		result.PagesUsed++
		result.Items = append(result.Items, page.Items...)

		if len(page.Items) == 0 {
			result.StoppedAt = StopNoMoreResults
			return result, nil
		}
		if len(page.Items) < req.PageSize {
			result.StoppedAt = StopShortPage
			return result, nil
		}

		req.PageNumber++
	}

	p.log.Debug("pagination hit page limit",
		"max_pages", p.maxPages,
		"items", len(result.Items),
	)
	result.StoppedAt = StopMaxPages
	return result, nil
}
