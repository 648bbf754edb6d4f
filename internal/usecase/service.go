package usecase

import (
	"context"

	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

const (
	DefaultTopArticles = 5
	MaxTopArticles     = 50
)

// Trigger starts an ingestion sweep without waiting for it.
type Trigger interface {
	Trigger(ctx context.Context) Acknowledgement
}

// Service is the read and trigger surface exposed to the API layer.
type Service struct {
	sources    ports.SourceRegistry
	categories ports.CategoryRegistry
	articles   ports.ArticleStore
	trigger    Trigger
}

// NewService wires registries, the article store and the sweep trigger.
func NewService(sources ports.SourceRegistry, categories ports.CategoryRegistry, articles ports.ArticleStore, trigger Trigger) *Service {
	return &Service{sources: sources, categories: categories, articles: articles, trigger: trigger}
}

func (s *Service) ListSources(ctx context.Context) ([]domain.Source, error) {
	return s.sources.ListSources(ctx)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.ListCategories(ctx)
}

func (s *Service) QueryArticles(ctx context.Context, filter domain.ArticleFilter) (domain.ArticlePage, error) {
	return s.articles.QueryArticles(ctx, filter)
}

func (s *Service) GetArticle(ctx context.Context, id int64) (domain.ArticleWithDetails, error) {
	return s.articles.GetArticle(ctx, id)
}

// TopArticles returns the newest articles. A limit below 1 falls back to
// DefaultTopArticles and larger ones are capped at MaxTopArticles.
func (s *Service) TopArticles(ctx context.Context, limit int) ([]domain.ArticleWithDetails, error) {
	return s.articles.LatestArticles(ctx, clampTopLimit(limit))
}

func clampTopLimit(limit int) int {
	switch {
	case limit < 1:
		return DefaultTopArticles
	case limit > MaxTopArticles:
		return MaxTopArticles
	default:
		return limit
	}
}

func (s *Service) Stats(ctx context.Context) (domain.ArticleStats, error) {
	return s.articles.ArticleStats(ctx)
}

// TriggerIngestionSweep is fire-and-forget; sweep errors never reach the caller.
func (s *Service) TriggerIngestionSweep(ctx context.Context) Acknowledgement {
	if s.trigger == nil {
		return Acknowledgement{Accepted: false, Message: msgLockFailed}
	}
	return s.trigger.Trigger(ctx)
}
