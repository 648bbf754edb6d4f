package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 5 << 20
	defaultUserAgent    = "CrimeScanner/1.0"
)

// Options tunes the HTTP fetcher.
type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
}

// HTTPFetcher performs single-attempt GET requests bounded by a timeout.
type HTTPFetcher struct {
	client       *http.Client
	maxBodyBytes int64
	userAgent    string
	logger       *slog.Logger
}

var _ ports.Fetcher = (*HTTPFetcher)(nil)

// New wires an HTTP client; a nil client gets one with opts.Timeout.
func New(client *http.Client, opts Options, logger *slog.Logger) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	} else if client.Timeout == 0 {
		client.Timeout = opts.Timeout
	}
	return &HTTPFetcher{
		client:       client,
		maxBodyBytes: opts.MaxBodyBytes,
		userAgent:    opts.UserAgent,
		logger:       logger,
	}
}

// Fetch returns the response body or a *domain.FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchNetwork, URL: rawURL, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/rss+xml,application/atom+xml;q=0.9,*/*;q=0.8")

	started := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Kind: classify(err), URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{Kind: domain.FetchBadStatus, URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, &domain.FetchError{Kind: classify(err), URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	f.debug("fetched", "url", rawURL, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(started))
	return body, nil
}

func classify(err error) domain.FetchErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.FetchTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.FetchTimeout
	}
	return domain.FetchNetwork
}

func (f *HTTPFetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
