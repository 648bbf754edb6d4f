package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"CrimeScanner/internal/classifier"
	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

// Name identifies the inference-service classifier inside the registry.
const Name = "inference"

// Client talks to an external ML service that scores crime articles.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Classifier = (*Client)(nil)

// NewClient creates a reusable HTTP client. A non-positive timeout means 15s.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// Name identifies the strategy inside the registry.
func (c *Client) Name() string {
	return Name
}

// Classify posts title and content to /classify and expects {"score", "category"} back.
func (c *Client) Classify(ctx context.Context, title, content string) (domain.Classification, error) {
	payload := map[string]any{
		"title":   title,
		"content": content,
	}

	var resp struct {
		Score    *int   `json:"score"`
		Category string `json:"category"`
	}
	if err := c.post(ctx, "/classify", payload, &resp); err != nil {
		return domain.Classification{}, err
	}
	if resp.Score == nil {
		return domain.Classification{}, fmt.Errorf("inference response has no score")
	}

	return classifier.FromScore(*resp.Score, resp.Category)
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
