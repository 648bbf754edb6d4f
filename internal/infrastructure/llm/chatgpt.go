package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"CrimeScanner/internal/classifier"
	"CrimeScanner/internal/config"
	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

// Name identifies the ChatGPT classifier inside the registry.
const Name = "chatgpt"

const maxPromptRunes = 4000

// ChatGPTClassifier implements ports.Classifier backed by OpenAI-compatible chat APIs.
type ChatGPTClassifier struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Classifier = (*ChatGPTClassifier)(nil)

// NewChatGPTClassifier builds a classifier from configuration.
func NewChatGPTClassifier(cfg config.ChatGPTConfig) *ChatGPTClassifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ChatGPTClassifier{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Name identifies the strategy inside the registry.
func (c *ChatGPTClassifier) Name() string {
	return Name
}

type verdict struct {
	Score    *int   `json:"score"`
	Category string `json:"category"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Classify asks the model for a score in [-100,100] and an optional category name.
// The label is derived from the score with the same thresholds as the keyword classifier.
func (c *ChatGPTClassifier) Classify(ctx context.Context, title, content string) (domain.Classification, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.Classification{}, fmt.Errorf("chatgpt classifier misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model":           c.model,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []chatMessage{
			{Role: "system", Content: c.prompt()},
			{Role: "user", Content: "Title: " + title + "\n\n" + clip(content, maxPromptRunes)},
		},
	})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("classify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Classification{}, fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return domain.Classification{}, fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return domain.Classification{}, fmt.Errorf("chatgpt response has no choices")
	}

	return parseVerdict(decoded.Choices[0].Message.Content)
}

func parseVerdict(raw string) (domain.Classification, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var v verdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		return domain.Classification{}, fmt.Errorf("decode verdict: %w", err)
	}
	if v.Score == nil {
		return domain.Classification{}, fmt.Errorf("verdict has no score")
	}
	return classifier.FromScore(*v.Score, v.Category)
}

func (c *ChatGPTClassifier) prompt() string {
	if p := strings.TrimSpace(c.systemPrompt); p != "" {
		return p
	}
	return "You label crime news articles. Reply with a JSON object " +
		`{"score": <integer from -100 to 100, negative for alarming news>, "category": <one of ` +
		strings.Join(classifier.CategoryNames(), ", ") +
		`, or "" if none fits>}.`
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
