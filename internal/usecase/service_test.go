package usecase

import (
	"context"
	"errors"
	"testing"

	"CrimeScanner/internal/classifier"
	"CrimeScanner/internal/config"
	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/infrastructure/lock"
)

func TestServiceTopArticlesLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewService(f.sources, f.categories, f.articles, nil)

	for _, limit := range []int{0, -1, MaxTopArticles + 1, 1 << 30} {
		if _, err := svc.TopArticles(context.Background(), limit); err != nil {
			t.Errorf("TopArticles(%d) err = %v", limit, err)
		}
	}

	got, err := svc.TopArticles(context.Background(), DefaultTopArticles)
	if err != nil {
		t.Fatalf("TopArticles: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("top = %v, want empty", got)
	}
}

func TestClampTopLimit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want int
	}{
		{0, DefaultTopArticles},
		{-3, DefaultTopArticles},
		{1, 1},
		{12, 12},
		{MaxTopArticles, MaxTopArticles},
		{MaxTopArticles + 1, MaxTopArticles},
		{1 << 30, MaxTopArticles},
	}
	for _, tc := range cases {
		if got := clampTopLimit(tc.in); got != tc.want {
			t.Errorf("clampTopLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestServiceTriggerAndReads(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := NewScheduler(SchedulerDeps{
		Pipeline: f.pipeline(classifier.NewKeyword()),
		Lock:     lock.NewLocal(),
		Logger:   discardLogger(),
	})
	svc := NewService(f.sources, f.categories, f.articles, s)

	if ack := svc.TriggerIngestionSweep(context.Background()); !ack.Accepted {
		t.Fatalf("ack = %+v", ack)
	}
	waitSweep(t, s)

	sources, err := svc.ListSources(context.Background())
	if err != nil || len(sources) != 3 {
		t.Fatalf("sources = %v, %v", sources, err)
	}
	cats, err := svc.ListCategories(context.Background())
	if err != nil || len(cats) != len(domain.CrimeCategories()) {
		t.Fatalf("categories = %v, %v", cats, err)
	}

	article, err := svc.GetArticle(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if _, err := svc.GetArticle(context.Background(), 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing article err = %v", err)
	}

	top, err := svc.TopArticles(context.Background(), 5)
	if err != nil || len(top) != 1 || top[0].ID != article.ID {
		t.Fatalf("top = %v, %v", top, err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 1 || len(stats.CategoryCounts) != 1 || stats.CategoryCounts[0].CategoryName != domain.CategoryMurder {
		t.Fatalf("stats = %+v", stats)
	}

	page, err := svc.QueryArticles(context.Background(), domain.ArticleFilter{SearchTerm: "TRADER"})
	if err != nil || page.Total != 1 {
		t.Fatalf("search = %+v, %v", page, err)
	}
}

func TestServiceTriggerUnavailable(t *testing.T) {
	t.Parallel()

	if ack := NewService(nil, nil, nil, nil).TriggerIngestionSweep(context.Background()); ack.Accepted {
		t.Fatalf("ack = %+v", ack)
	}
}

func TestSeederIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sources, _ := f.sources.ListSources(context.Background())
	if len(sources) != 3 {
		t.Fatalf("sources = %d, want 3", len(sources))
	}
	if sources[2].IsActive {
		t.Error("disabled catalog entry seeded as active")
	}
	if !sources[0].IsNigerian || sources[1].IsNigerian {
		t.Errorf("nationality flags = %v %v", sources[0].IsNigerian, sources[1].IsNigerian)
	}

	again := []config.SourceConfig{{Name: "Other", URL: "https://other.example"}}
	if err := NewSeeder(f.sources, f.categories, again, nil).Seed(context.Background()); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	after, _ := f.sources.ListSources(context.Background())
	cats, _ := f.categories.ListCategories(context.Background())
	if len(after) != 3 || len(cats) != len(domain.CrimeCategories()) {
		t.Fatalf("reseed changed registries: %d sources, %d categories", len(after), len(cats))
	}
}

func TestToNewSourceDefaultsCountry(t *testing.T) {
	t.Parallel()

	if got := toNewSource(config.SourceConfig{Nigerian: true}).Country; got != "Nigeria" {
		t.Errorf("country = %q", got)
	}
	if got := toNewSource(config.SourceConfig{}).Country; got != "International" {
		t.Errorf("country = %q", got)
	}
}
