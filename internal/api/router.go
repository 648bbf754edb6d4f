package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/usecase"
)

// Service is the application surface the handlers call.
type Service interface {
	ListSources(ctx context.Context) ([]domain.Source, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	QueryArticles(ctx context.Context, filter domain.ArticleFilter) (domain.ArticlePage, error)
	GetArticle(ctx context.Context, id int64) (domain.ArticleWithDetails, error)
	TopArticles(ctx context.Context, limit int) ([]domain.ArticleWithDetails, error)
	Stats(ctx context.Context) (domain.ArticleStats, error)
	TriggerIngestionSweep(ctx context.Context) usecase.Acknowledgement
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(svc Service, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{svc: svc, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))

	r.GET("/health", h.health)

	group := r.Group("/api")
	{
		group.GET("/sources", h.listSources)
		group.GET("/categories", h.listCategories)
		group.GET("/articles", h.queryArticles)
		group.GET("/articles/:id", h.getArticle)
		group.GET("/articles/top", h.topArticles)
		group.GET("/articles/top/:limit", h.topArticles)
		group.GET("/top-articles", h.topArticles)
		group.GET("/top-articles/:limit", h.topArticles)
		group.GET("/stats", h.stats)
		group.POST("/scrape", h.triggerSweep)
	}
	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)))
	}
}
