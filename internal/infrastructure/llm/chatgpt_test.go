package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"CrimeScanner/internal/config"
	"CrimeScanner/internal/domain"
)

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("authorization = %q", got)
		}
		var req struct {
			Model    string        `json:"model"`
			Messages []chatMessage `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-test" || len(req.Messages) != 2 {
			t.Errorf("request = %+v", req)
		}

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
}

func newTestClassifier(endpoint string) *ChatGPTClassifier {
	return NewChatGPTClassifier(config.ChatGPTConfig{Endpoint: endpoint, Model: "gpt-test", APIKey: "key"})
}

func TestClassifyParsesVerdict(t *testing.T) {
	t.Parallel()

	srv := chatServer(t, http.StatusOK, `{"score": -45, "category": "Kidnapping"}`)
	defer srv.Close()

	got, err := newTestClassifier(srv.URL).Classify(context.Background(), "Gunmen abduct", "text")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	want := domain.Classification{Sentiment: domain.SentimentNegative, SentimentScore: -45, CategoryName: "Kidnapping"}
	if got != want {
		t.Fatalf("Classify = %+v, want %+v", got, want)
	}
}

func TestClassifyDropsUnknownCategory(t *testing.T) {
	t.Parallel()

	srv := chatServer(t, http.StatusOK, "```json\n{\"score\": 20, \"category\": \"Weather\"}\n```")
	defer srv.Close()

	got, err := newTestClassifier(srv.URL).Classify(context.Background(), "t", "c")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Sentiment != domain.SentimentNeutral || got.CategoryName != "" {
		t.Fatalf("Classify = %+v", got)
	}
}

func TestClassifyRejectsBadVerdicts(t *testing.T) {
	t.Parallel()

	for name, content := range map[string]string{
		"out of range": `{"score": 150}`,
		"no score":     `{"category": "Murder"}`,
		"not json":     `negative`,
	} {
		srv := chatServer(t, http.StatusOK, content)
		if _, err := newTestClassifier(srv.URL).Classify(context.Background(), "t", "c"); err == nil {
			t.Errorf("%s: expected error", name)
		}
		srv.Close()
	}
}

func TestClassifyHTTPError(t *testing.T) {
	t.Parallel()

	srv := chatServer(t, http.StatusTooManyRequests, `{}`)
	defer srv.Close()

	if _, err := newTestClassifier(srv.URL).Classify(context.Background(), "t", "c"); err == nil {
		t.Fatal("expected error on 429")
	}

	if _, err := NewChatGPTClassifier(config.ChatGPTConfig{}).Classify(context.Background(), "t", "c"); err == nil {
		t.Fatal("expected misconfiguration error")
	}
}
