package storage

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

// ArticleRepository is the in-memory article store. Articles are kept in id order.
type ArticleRepository struct {
	mu       sync.RWMutex
	nextID   int64
	articles []domain.Article
	index    map[int64]int
	byURL    map[string]int64

	sources    ports.SourceRegistry
	categories ports.CategoryRegistry
	now        func() time.Time
}

var _ ports.ArticleStore = (*ArticleRepository)(nil)

// NewArticleRepository wires the registries used to validate and resolve references.
func NewArticleRepository(sources ports.SourceRegistry, categories ports.CategoryRegistry, now func() time.Time) *ArticleRepository {
	if now == nil {
		now = time.Now
	}
	return &ArticleRepository{
		index:      map[int64]int{},
		byURL:      map[string]int64{},
		sources:    sources,
		categories: categories,
		now:        now,
	}
}

// CreateArticle assigns the next id, stamps ScrapedAt and defaults PublishedAt to now.
func (r *ArticleRepository) CreateArticle(ctx context.Context, in domain.NewArticle) (domain.Article, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Article{}, &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.URL) == "" {
		return domain.Article{}, &domain.ValidationError{Field: "url", Reason: "must not be empty"}
	}
	if err := r.checkReferences(ctx, 0, &in.SourceID, in.CategoryID); err != nil {
		return domain.Article{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byURL[in.URL]; ok {
		return domain.Article{}, fmt.Errorf("create article %s: %w", in.URL, domain.ErrDuplicateURL)
	}

	now := r.now().UTC()
	published := now
	if in.PublishedAt != nil {
		published = *in.PublishedAt
	}

	r.nextID++
	article := cloneArticle(domain.Article{
		ID:             r.nextID,
		Title:          in.Title,
		Content:        in.Content,
		URL:            in.URL,
		SourceID:       in.SourceID,
		CategoryID:     in.CategoryID,
		PublishedAt:    &published,
		ScrapedAt:      now,
		Sentiment:      in.Sentiment,
		SentimentScore: in.SentimentScore,
		Metadata:       in.Metadata,
	})

	r.index[article.ID] = len(r.articles)
	r.byURL[article.URL] = article.ID
	r.articles = append(r.articles, article)
	return cloneArticle(article), nil
}

// UpdateArticle applies the non-nil fields of update.
func (r *ArticleRepository) UpdateArticle(ctx context.Context, id int64, update domain.ArticleUpdate) (domain.Article, error) {
	if err := r.checkReferences(ctx, id, update.SourceID, update.CategoryID); err != nil {
		return domain.Article{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return domain.Article{}, fmt.Errorf("article %d: %w", id, domain.ErrNotFound)
	}

	current := r.articles[i]
	updated := cloneArticle(update.Apply(current))
	if updated.URL != current.URL {
		if _, taken := r.byURL[updated.URL]; taken {
			return domain.Article{}, fmt.Errorf("update article %d: %w", id, domain.ErrDuplicateURL)
		}
		delete(r.byURL, current.URL)
		r.byURL[updated.URL] = id
	}

	r.articles[i] = updated
	return cloneArticle(updated), nil
}

// GetArticle returns the article joined with its source and category.
func (r *ArticleRepository) GetArticle(ctx context.Context, id int64) (domain.ArticleWithDetails, error) {
	r.mu.RLock()
	i, ok := r.index[id]
	var article domain.Article
	if ok {
		article = cloneArticle(r.articles[i])
	}
	r.mu.RUnlock()

	if !ok {
		return domain.ArticleWithDetails{}, fmt.Errorf("article %d: %w", id, domain.ErrNotFound)
	}

	details, err := r.resolve(ctx, []domain.Article{article})
	if err != nil {
		return domain.ArticleWithDetails{}, err
	}
	return details[0], nil
}

// QueryArticles filters, sorts and paginates a snapshot of the store.
func (r *ArticleRepository) QueryArticles(ctx context.Context, filter domain.ArticleFilter) (domain.ArticlePage, error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return domain.ArticlePage{}, err
	}

	r.mu.RLock()
	matched := filterArticles(r.articles, filter)
	r.mu.RUnlock()

	sortArticles(matched, filter.SortBy, filter.SortOrder)
	page := paginate(matched, filter.Offset(), filter.PageSize)

	details, err := r.resolve(ctx, page)
	if err != nil {
		return domain.ArticlePage{}, err
	}
	return domain.ArticlePage{Articles: details, Total: len(matched)}, nil
}

// LatestArticles returns up to limit articles, newest publishedAt first.
func (r *ArticleRepository) LatestArticles(ctx context.Context, limit int) ([]domain.ArticleWithDetails, error) {
	if limit <= 0 {
		return []domain.ArticleWithDetails{}, nil
	}

	snapshot := r.snapshot()
	return r.resolve(ctx, latestFirst(snapshot, limit))
}

// ArticleStats counts articles by category, source nationality and sentiment.
func (r *ArticleRepository) ArticleStats(ctx context.Context) (domain.ArticleStats, error) {
	snapshot := r.snapshot()

	sources, err := r.sources.ListSources(ctx)
	if err != nil {
		return domain.ArticleStats{}, fmt.Errorf("list sources: %w", err)
	}
	nigerian := make(map[int64]bool, len(sources))
	for _, s := range sources {
		nigerian[s.ID] = s.IsNigerian
	}

	byCategory := map[int64]int{}
	bySentiment := map[domain.Sentiment]int{}
	nigerianCount := 0
	for _, a := range snapshot {
		isNigerian, ok := nigerian[a.SourceID]
		if !ok {
			return domain.ArticleStats{}, &domain.IntegrityError{ArticleID: a.ID, SourceID: a.SourceID}
		}
		if isNigerian {
			nigerianCount++
		}
		if a.CategoryID != nil {
			byCategory[*a.CategoryID]++
		}
		if a.Sentiment != nil {
			bySentiment[*a.Sentiment]++
		}
	}

	stats := domain.ArticleStats{
		CategoryCounts:  make([]domain.CategoryCount, 0, len(byCategory)),
		SentimentCounts: make([]domain.SentimentCount, 0, len(bySentiment)),
		SourceCounts: []domain.SourceCount{
			{IsNigerian: true, Count: nigerianCount},
			{IsNigerian: false, Count: len(snapshot) - nigerianCount},
		},
		Total: len(snapshot),
	}

	for _, id := range slices.Sorted(maps.Keys(byCategory)) {
		name := domain.UnknownCategoryName
		cat, err := r.categories.GetCategory(ctx, id)
		switch {
		case err == nil:
			name = cat.Name
		case !errors.Is(err, domain.ErrNotFound):
			return domain.ArticleStats{}, fmt.Errorf("resolve category %d: %w", id, err)
		}
		stats.CategoryCounts = append(stats.CategoryCounts, domain.CategoryCount{
			CategoryID:   id,
			CategoryName: name,
			Count:        byCategory[id],
		})
	}

	for _, s := range slices.Sorted(maps.Keys(bySentiment)) {
		stats.SentimentCounts = append(stats.SentimentCounts, domain.SentimentCount{Sentiment: s, Count: bySentiment[s]})
	}

	return stats, nil
}

// ArticleURLExists reports whether an article with url is stored.
func (r *ArticleRepository) ArticleURLExists(_ context.Context, url string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byURL[url]
	return ok, nil
}

func (r *ArticleRepository) snapshot() []domain.Article {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Article, len(r.articles))
	copy(out, r.articles)
	return out
}

func (r *ArticleRepository) checkReferences(ctx context.Context, articleID int64, sourceID, categoryID *int64) error {
	if sourceID != nil {
		if _, err := r.sources.GetSource(ctx, *sourceID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.IntegrityError{ArticleID: articleID, SourceID: *sourceID, Detail: "source does not exist"}
			}
			return fmt.Errorf("check source: %w", err)
		}
	}
	if categoryID != nil {
		if _, err := r.categories.GetCategory(ctx, *categoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.ValidationError{Field: "categoryId", Reason: fmt.Sprintf("category %d does not exist", *categoryID)}
			}
			return fmt.Errorf("check category: %w", err)
		}
	}
	return nil
}

// resolve joins sources and categories. A missing source is an integrity fault.
func (r *ArticleRepository) resolve(ctx context.Context, articles []domain.Article) ([]domain.ArticleWithDetails, error) {
	out := make([]domain.ArticleWithDetails, 0, len(articles))
	for _, a := range articles {
		src, err := r.sources.GetSource(ctx, a.SourceID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.IntegrityError{ArticleID: a.ID, SourceID: a.SourceID}
			}
			return nil, fmt.Errorf("resolve source %d: %w", a.SourceID, err)
		}

		var cat *domain.Category
		if a.CategoryID != nil {
			c, err := r.categories.GetCategory(ctx, *a.CategoryID)
			switch {
			case err == nil:
				cat = &c
			case !errors.Is(err, domain.ErrNotFound):
				return nil, fmt.Errorf("resolve category %d: %w", *a.CategoryID, err)
			}
		}

		out = append(out, a.WithDetails(src, cat))
	}
	return out, nil
}

// cloneArticle copies pointer and map fields so stored records never alias caller memory.
func cloneArticle(a domain.Article) domain.Article {
	if a.CategoryID != nil {
		id := *a.CategoryID
		a.CategoryID = &id
	}
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		a.PublishedAt = &t
	}
	if a.Sentiment != nil {
		s := *a.Sentiment
		a.Sentiment = &s
	}
	if a.SentimentScore != nil {
		score := *a.SentimentScore
		a.SentimentScore = &score
	}
	if a.Metadata != nil {
		a.Metadata = maps.Clone(a.Metadata)
	}
	return a
}
