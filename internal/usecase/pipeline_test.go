package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"CrimeScanner/internal/classifier"
	"CrimeScanner/internal/config"
	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/infrastructure/parser"
	"CrimeScanner/internal/infrastructure/storage"
	"CrimeScanner/internal/ports"
)

var fixedNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
	gate  chan struct{}
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, &domain.FetchError{Kind: domain.FetchTimeout, URL: url, Err: ctx.Err()}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	body, ok := f.pages[url]
	if !ok {
		return nil, &domain.FetchError{Kind: domain.FetchBadStatus, URL: url, StatusCode: 404}
	}
	return []byte(body), nil
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type failingClassifier struct{}

func (failingClassifier) Name() string { return "broken" }

func (failingClassifier) Classify(context.Context, string, string) (domain.Classification, error) {
	return domain.Classification{}, errors.New("model unavailable")
}

const landingPage = `<html><body>
<a href="/a1">murder</a>
<a href="/a2">missing</a>
<a href="/a3">empty</a>
<a href="#top">top</a>
<a href="mailto:desk@news.example">mail</a>
<a href="/a1#comments">again</a>
</body></html>`

const murderArticle = `<html><body>
<h1>Man arrested for murder in Lagos</h1>
<time datetime="2024-02-10T08:00:00Z">10 Feb 2024</time>
<article><p>Police arrested a suspect in the murder of a trader.</p><p>Investigation continues.</p></article>
</body></html>`

const emptyArticle = `<html><body><h1>Headline only</h1></body></html>`

type fixture struct {
	sources    *storage.SourceRepository
	categories *storage.CategoryRepository
	articles   *storage.ArticleRepository
	fetcher    *fakeFetcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := func() time.Time { return fixedNow }

	f := &fixture{
		sources:    storage.NewSourceRepository(now),
		categories: storage.NewCategoryRepository(),
		fetcher: newFakeFetcher(map[string]string{
			"https://news.example":    landingPage,
			"https://news.example/a1": murderArticle,
			"https://news.example/a3": emptyArticle,
		}),
	}
	f.articles = storage.NewArticleRepository(f.sources, f.categories, now)

	catalog := []config.SourceConfig{
		{Name: "News", URL: "https://news.example", Country: "Nigeria", Nigerian: true},
		{Name: "Down", URL: "https://down.example", Country: "UK"},
		{Name: "Paused", URL: "https://paused.example", Country: "UK", Disabled: true},
	}
	if err := NewSeeder(f.sources, f.categories, catalog, discardLogger()).Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return f
}

func (f *fixture) pipeline(c ports.Classifier) *Pipeline {
	return NewPipeline(PipelineDeps{
		Sources:    f.sources,
		Categories: f.categories,
		Articles:   f.articles,
		Fetcher:    f.fetcher,
		Extractor:  parser.NewHTMLExtractor(5, discardLogger()),
		Classifier: c,
		Logger:     discardLogger(),
		Now:        func() time.Time { return fixedNow },
	})
}

func TestSweepIsolatesFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	report, err := f.pipeline(classifier.NewKeyword()).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	want := domain.SweepReport{Sources: 2, SourcesFailed: 1, Links: 3, Created: 1, Failed: 2}
	report.StartedAt, report.FinishedAt = time.Time{}, time.Time{}
	if report != want {
		t.Fatalf("report = %+v, want %+v", report, want)
	}

	if f.fetcher.callCount("https://paused.example") != 0 {
		t.Error("inactive source was fetched")
	}

	page, err := f.articles.QueryArticles(context.Background(), domain.ArticleFilter{})
	if err != nil {
		t.Fatalf("QueryArticles: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("total = %d, want 1", page.Total)
	}

	got := page.Articles[0]
	if got.Title != "Man arrested for murder in Lagos" || got.URL != "https://news.example/a1" {
		t.Errorf("article = %+v", got)
	}
	if got.Content != "Police arrested a suspect in the murder of a trader.\n\nInvestigation continues." {
		t.Errorf("content = %q", got.Content)
	}
	if got.Category == nil || got.Category.Name != domain.CategoryMurder {
		t.Errorf("category = %+v", got.Category)
	}
	if got.Sentiment == nil || *got.Sentiment != domain.SentimentNeutral || *got.SentimentScore != 0 {
		t.Errorf("sentiment = %v %v", got.Sentiment, got.SentimentScore)
	}
	wantPublished := time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC)
	if got.PublishedAt == nil || !got.PublishedAt.Equal(wantPublished) {
		t.Errorf("publishedAt = %v", got.PublishedAt)
	}
	if got.Source.Name != "News" || !got.Source.IsNigerian {
		t.Errorf("source = %+v", got.Source)
	}
	if got.Metadata["classifier"] != classifier.KeywordName || got.Metadata["wordCount"] != 12 {
		t.Errorf("metadata = %v", got.Metadata)
	}
}

func TestSweepSkipsStoredURLs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p := f.pipeline(classifier.NewKeyword())
	if _, err := p.Sweep(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}

	report, err := p.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if report.Created != 0 || report.Skipped != 1 || report.Failed != 2 {
		t.Fatalf("report = %+v", report)
	}
	if n := f.fetcher.callCount("https://news.example/a1"); n != 1 {
		t.Fatalf("stored article fetched %d times, want 1", n)
	}
}

func TestSweepStoresArticleWhenClassifierFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	report, err := f.pipeline(failingClassifier{}).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("report = %+v", report)
	}

	got, err := f.articles.GetArticle(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if got.Sentiment != nil || got.SentimentScore != nil || got.Category != nil {
		t.Fatalf("labels set despite classifier failure: %+v", got)
	}
	if got.Metadata["classifier"] != "broken" {
		t.Errorf("metadata = %v", got.Metadata)
	}
}

func TestSweepUnknownCategoryName(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p := f.pipeline(stubClassifier{verdict: domain.Classification{
		Sentiment: domain.SentimentNegative, SentimentScore: -60, CategoryName: "Piracy",
	}})
	if _, err := p.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	got, err := f.articles.GetArticle(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if got.Category != nil {
		t.Errorf("category = %+v, want none", got.Category)
	}
	if got.SentimentScore == nil || *got.SentimentScore != -60 {
		t.Errorf("score = %v", got.SentimentScore)
	}
}

type stubClassifier struct {
	verdict domain.Classification
}

func (stubClassifier) Name() string { return "stub" }

func (s stubClassifier) Classify(context.Context, string, string) (domain.Classification, error) {
	return s.verdict, nil
}
