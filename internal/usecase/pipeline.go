package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

// DefaultArticleConcurrency caps parallel article work within one source.
const DefaultArticleConcurrency = 3

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Sources            ports.SourceRegistry
	Categories         ports.CategoryRegistry
	Articles           ports.ArticleStore
	Fetcher            ports.Fetcher
	Extractor          ports.Extractor
	Classifier         ports.Classifier
	ArticleConcurrency int
	Logger             *slog.Logger
	Now                func() time.Time
}

// Pipeline implements the fetch, extract, classify and persist sweep.
type Pipeline struct {
	sources     ports.SourceRegistry
	categories  ports.CategoryRegistry
	articles    ports.ArticleStore
	fetcher     ports.Fetcher
	extractor   ports.Extractor
	classifier  ports.Classifier
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	concurrency := deps.ArticleConcurrency
	if concurrency < 1 {
		concurrency = DefaultArticleConcurrency
	}

	return &Pipeline{
		sources:     deps.Sources,
		categories:  deps.Categories,
		articles:    deps.Articles,
		fetcher:     deps.Fetcher,
		extractor:   deps.Extractor,
		classifier:  deps.Classifier,
		concurrency: concurrency,
		logger:      logger,
		now:         now,
	}
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Sweep visits every active source in turn. Only a failure to list sources is returned;
// per-source and per-article failures are logged and counted in the report.
func (p *Pipeline) Sweep(ctx context.Context) (domain.SweepReport, error) {
	report := domain.SweepReport{StartedAt: p.now().UTC()}

	sources, err := p.sources.ActiveSources(ctx)
	if err != nil {
		report.FinishedAt = p.now().UTC()
		return report, fmt.Errorf("list active sources: %w", err)
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		report.Sources++

		links, outcomes, err := p.processSource(ctx, src)
		if err != nil {
			report.SourcesFailed++
			p.logger.Warn("source skipped",
				slog.Int64("source_id", src.ID),
				slog.String("source", src.Name),
				slog.Any("error", err))
			continue
		}

		report.Links += links
		for _, o := range outcomes {
			switch o {
			case outcomeCreated:
				report.Created++
			case outcomeSkipped:
				report.Skipped++
			default:
				report.Failed++
			}
		}
	}

	report.FinishedAt = p.now().UTC()
	p.logger.Info("sweep finished",
		slog.Int("sources", report.Sources),
		slog.Int("sources_failed", report.SourcesFailed),
		slog.Int("links", report.Links),
		slog.Int("created", report.Created),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", report.Duration()))
	return report, nil
}

// processSource fetches the landing page and ingests its candidate links with bounded concurrency.
func (p *Pipeline) processSource(ctx context.Context, src domain.Source) (int, []outcome, error) {
	landing, err := p.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return 0, nil, err
	}

	links, err := p.extractor.ExtractLinks(landing, src.URL)
	if err != nil {
		return 0, nil, fmt.Errorf("extract links from %s: %w", src.URL, err)
	}

	p.logger.Debug("candidate links",
		slog.String("source", src.Name),
		slog.Int("links", len(links)))

	outcomes := make([]outcome, len(links))
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, link := range links {
		g.Go(func() error {
			outcomes[i] = p.processArticle(ctx, src, link)
			return nil
		})
	}
	_ = g.Wait()

	return len(links), outcomes, nil
}

func (p *Pipeline) processArticle(ctx context.Context, src domain.Source, link string) outcome {
	logger := p.logger.With(slog.String("source", src.Name), slog.String("url", link))

	if err := ctx.Err(); err != nil {
		return outcomeFailed
	}

	exists, err := p.articles.ArticleURLExists(ctx, link)
	if err != nil {
		logger.Error("check article url", slog.Any("error", err))
		return outcomeFailed
	}
	if exists {
		return outcomeSkipped
	}

	page, err := p.fetcher.Fetch(ctx, link)
	if err != nil {
		logger.Warn("article fetch failed", slog.Any("error", err))
		return outcomeFailed
	}

	extracted, err := p.extractor.ExtractArticle(page)
	if err != nil {
		logger.Warn("article extraction failed", slog.Any("error", err))
		return outcomeFailed
	}

	in := domain.NewArticle{
		Title:       extracted.Title,
		Content:     extracted.Content,
		URL:         link,
		SourceID:    src.ID,
		PublishedAt: extracted.PublishedAt,
		Metadata: map[string]any{
			"wordCount":   len(strings.Fields(extracted.Content)),
			"processedAt": p.now().UTC().Format(time.RFC3339),
			"classifier":  p.classifier.Name(),
		},
	}

	verdict, err := p.classifier.Classify(ctx, extracted.Title, extracted.Content)
	if err != nil {
		logger.Warn("classification failed, storing without labels", slog.Any("error", err))
	} else {
		sentiment, score := verdict.Sentiment, verdict.SentimentScore
		in.Sentiment, in.SentimentScore = &sentiment, &score
		in.CategoryID = p.resolveCategory(ctx, logger, verdict.CategoryName)
	}

	created, err := p.articles.CreateArticle(ctx, in)
	switch {
	case errors.Is(err, domain.ErrDuplicateURL):
		return outcomeSkipped
	case err != nil:
		logger.Error("store article", slog.Any("error", err))
		return outcomeFailed
	}

	logger.Debug("article stored", slog.Int64("article_id", created.ID))
	return outcomeCreated
}

func (p *Pipeline) resolveCategory(ctx context.Context, logger *slog.Logger, name string) *int64 {
	if name == "" {
		return nil
	}

	cat, err := p.categories.FindCategoryByName(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("resolve category", slog.String("category", name), slog.Any("error", err))
		}
		return nil
	}
	return &cat.ID
}
