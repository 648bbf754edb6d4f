package ports

import (
	"context"
	"time"

	"CrimeScanner/internal/domain"
)

// SourceRegistry owns the crawled news sites.
type SourceRegistry interface {
	ListSources(ctx context.Context) ([]domain.Source, error)
	ActiveSources(ctx context.Context) ([]domain.Source, error)
	GetSource(ctx context.Context, id int64) (domain.Source, error)
	CreateSource(ctx context.Context, src domain.NewSource) (domain.Source, error)
	SetSourceActive(ctx context.Context, id int64, active bool) (domain.Source, error)
}

// CategoryRegistry owns the fixed crime categories.
type CategoryRegistry interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (domain.Category, error)
	FindCategoryByName(ctx context.Context, name string) (domain.Category, error)
	CreateCategory(ctx context.Context, cat domain.NewCategory) (domain.Category, error)
}

// ArticleStore is the authoritative article repository and query engine.
type ArticleStore interface {
	CreateArticle(ctx context.Context, article domain.NewArticle) (domain.Article, error)
	UpdateArticle(ctx context.Context, id int64, update domain.ArticleUpdate) (domain.Article, error)
	GetArticle(ctx context.Context, id int64) (domain.ArticleWithDetails, error)
	QueryArticles(ctx context.Context, filter domain.ArticleFilter) (domain.ArticlePage, error)
	LatestArticles(ctx context.Context, limit int) ([]domain.ArticleWithDetails, error)
	ArticleStats(ctx context.Context) (domain.ArticleStats, error)
	ArticleURLExists(ctx context.Context, url string) (bool, error)
}

// Fetcher performs a single bounded GET.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor turns fetched documents into candidate links or article fields.
type Extractor interface {
	ExtractLinks(document []byte, baseURL string) ([]string, error)
	ExtractArticle(document []byte) (domain.ExtractedArticle, error)
}

// Classifier labels an article with sentiment and crime category.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, title, content string) (domain.Classification, error)
}

// SweepLock prevents overlapping sweeps.
type SweepLock interface {
	// TryAcquire returns ok=false without blocking when the lock is held elsewhere.
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}

// Notifier streams sweep reports to an operator channel.
type Notifier interface {
	PublishReport(ctx context.Context, report string) error
}

// Scheduler controls when sweeps are triggered.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
