package domain

import (
	"math"
	"time"
)

// SortField selects the ordering key of a query.
type SortField string

const (
	SortByPublishedAt SortField = "publishedAt"
	SortBySentiment   SortField = "sentiment"
	// SortByRelevance orders by publishedAt descending regardless of SortOrder.
	SortByRelevance SortField = "relevance"
)

// SortOrder selects the direction of a query.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ArticleFilter holds the predicates, sort and page accepted by the query engine.
type ArticleFilter struct {
	CategoryIDs []int64
	SourceIDs   []int64
	Sentiments  []Sentiment
	// DateFrom and DateTo are inclusive bounds on PublishedAt.
	DateFrom   *time.Time
	DateTo     *time.Time
	SearchTerm string
	Page       int
	PageSize   int
	SortBy     SortField
	SortOrder  SortOrder
}

// Normalize fills unset pagination and sort fields with their defaults and
// caps PageSize at MaxPageSize.
func (f ArticleFilter) Normalize() ArticleFilter {
	if f.Page == 0 {
		f.Page = DefaultPage
	}
	if f.PageSize == 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.SortBy == "" {
		f.SortBy = SortByPublishedAt
	}
	if f.SortOrder == "" {
		f.SortOrder = SortDesc
	}
	return f
}

// Validate checks a normalized filter.
func (f ArticleFilter) Validate() error {
	if f.Page < 1 {
		return &ValidationError{Field: "page", Reason: "must be at least 1"}
	}
	if f.PageSize < 1 {
		return &ValidationError{Field: "pageSize", Reason: "must be at least 1"}
	}
	switch f.SortBy {
	case SortByPublishedAt, SortBySentiment, SortByRelevance:
	default:
		return &ValidationError{Field: "sortBy", Reason: "unknown sort field " + string(f.SortBy)}
	}
	switch f.SortOrder {
	case SortAsc, SortDesc:
	default:
		return &ValidationError{Field: "sortOrder", Reason: "unknown sort order " + string(f.SortOrder)}
	}
	for _, s := range f.Sentiments {
		if !s.Valid() {
			return &ValidationError{Field: "sentiments", Reason: "unknown sentiment " + string(s)}
		}
	}
	return nil
}

// Offset is the index of the first item on the requested page. Pages past
// the representable range saturate at math.MaxInt.
func (f ArticleFilter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}
