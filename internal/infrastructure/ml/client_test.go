package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"CrimeScanner/internal/domain"
)

func TestClassifyPostsArticle(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classify" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		if in["title"] != "Bank hacked" || in["content"] != "Hackers stole data." {
			t.Errorf("payload = %v", in)
		}
		_, _ = w.Write([]byte(`{"score": 35, "category": "Cybercrime"}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL+"/", "secret", 0).Classify(context.Background(), "Bank hacked", "Hackers stole data.")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	want := domain.Classification{Sentiment: domain.SentimentPositive, SentimentScore: 35, CategoryName: "Cybercrime"}
	if got != want {
		t.Fatalf("Classify = %+v, want %+v", got, want)
	}
}

func TestClassifyFailures(t *testing.T) {
	t.Parallel()

	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"no score": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"category": "Fraud"}`))
		},
		"range": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"score": -101}`))
		},
	}

	for name, h := range cases {
		srv := httptest.NewServer(h)
		if _, err := NewClient(srv.URL, "", 0).Classify(context.Background(), "t", "c"); err == nil {
			t.Errorf("%s: expected error", name)
		}
		srv.Close()
	}
}
