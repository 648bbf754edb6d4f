package storage

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"CrimeScanner/internal/domain"
)

// filterArticles keeps the articles matching every active predicate of f.
func filterArticles(articles []domain.Article, f domain.ArticleFilter) []domain.Article {
	categories := idSet(f.CategoryIDs)
	sources := idSet(f.SourceIDs)
	sentiments := make(map[domain.Sentiment]struct{}, len(f.Sentiments))
	for _, s := range f.Sentiments {
		sentiments[s] = struct{}{}
	}
	term := strings.ToLower(strings.TrimSpace(f.SearchTerm))

	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if len(categories) > 0 {
			if a.CategoryID == nil {
				continue
			}
			if _, ok := categories[*a.CategoryID]; !ok {
				continue
			}
		}
		if len(sources) > 0 {
			if _, ok := sources[a.SourceID]; !ok {
				continue
			}
		}
		if len(sentiments) > 0 {
			if a.Sentiment == nil {
				continue
			}
			if _, ok := sentiments[*a.Sentiment]; !ok {
				continue
			}
		}
		if f.DateFrom != nil && (a.PublishedAt == nil || a.PublishedAt.Before(*f.DateFrom)) {
			continue
		}
		if f.DateTo != nil && (a.PublishedAt == nil || a.PublishedAt.After(*f.DateTo)) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(a.Title), term) &&
			!strings.Contains(strings.ToLower(a.Content), term) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// sortArticles orders in place. Nulls always go last; ties fall back to id ascending.
func sortArticles(articles []domain.Article, by domain.SortField, order domain.SortOrder) {
	desc := order == domain.SortDesc
	if by == domain.SortByRelevance {
		by, desc = domain.SortByPublishedAt, true
	}

	slices.SortFunc(articles, func(a, b domain.Article) int {
		var c int
		switch by {
		case domain.SortBySentiment:
			c = compareNullsLast(a.SentimentScore, b.SentimentScore, desc, cmp.Compare[int])
		default:
			c = compareNullsLast(a.PublishedAt, b.PublishedAt, desc, time.Time.Compare)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func compareNullsLast[T any](a, b *T, desc bool, compare func(T, T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	c := compare(*a, *b)
	if desc {
		return -c
	}
	return c
}

// paginate returns the window [offset, offset+size) clipped to the slice.
func paginate(articles []domain.Article, offset, size int) []domain.Article {
	if offset < 0 || offset >= len(articles) || size <= 0 {
		return nil
	}
	end := offset + min(size, len(articles)-offset)
	return articles[offset:end]
}

// latestFirst orders by publishedAt descending with nulls last.
func latestFirst(articles []domain.Article, limit int) []domain.Article {
	sortArticles(articles, domain.SortByPublishedAt, domain.SortDesc)
	if limit < len(articles) {
		articles = articles[:limit]
	}
	return articles
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
