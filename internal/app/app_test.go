package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CrimeScanner/internal/config"
	"CrimeScanner/internal/domain"
)

func testConfig() config.Config {
	return config.Config{
		HTTP:       config.HTTPConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second},
		Storage:    config.StorageConfig{Driver: config.StorageMemory},
		Fetcher:    config.FetcherConfig{Timeout: time.Second},
		Pipeline:   config.PipelineConfig{MaxLinksPerSource: 5, ArticleConcurrency: 3},
		Classifier: config.ClassifierConfig{Name: "keyword"},
		Sources: []config.SourceConfig{
			{Name: "Punch", URL: "https://punchng.com", Country: "Nigeria", Nigerian: true},
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewServesSeededRegistries(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(), quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.seeder.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cats []domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != len(domain.CrimeCategories()) {
		t.Fatalf("categories = %d", len(cats))
	}

	rec = httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sources", nil))
	var sources []domain.Source
	if err := json.Unmarshal(rec.Body.Bytes(), &sources); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sources) != 1 || !sources[0].IsActive {
		t.Fatalf("sources = %+v", sources)
	}
}

func TestNewRejectsUnknownClassifier(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Classifier.Name = "oracle"
	if _, err := New(context.Background(), cfg, quietLogger()); err == nil {
		t.Fatal("expected error for unregistered classifier")
	}
}

func TestNewRegistersChatGPTWithAPIKey(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Classifier.Name = "chatgpt"
	cfg.ChatGPT = config.ChatGPTConfig{Endpoint: "http://127.0.0.1:1", Model: "m", APIKey: "k"}
	if _, err := New(context.Background(), cfg, quietLogger()); err != nil {
		t.Fatalf("New: %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(), quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
