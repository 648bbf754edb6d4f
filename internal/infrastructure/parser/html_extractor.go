package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

// DefaultMaxLinks bounds the candidate links taken from one landing page.
const DefaultMaxLinks = 5

var (
	titleSelectors = []string{"h1", "article h1", ".article-title", ".headline"}

	contentSelectors = []string{
		"article p", ".article-body p", ".story-body p",
		".entry-content p", ".post-content p", ".story p",
	}

	dateSelectors = []string{
		"time", ".date", ".published-date",
		`meta[property="article:published_time"]`,
		".timestamp", ".article-date",
	}

	// structured timestamp attributes win over visible text
	dateAttributes = []string{"datetime", "content"}
)

var dateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

// HTMLExtractor parses landing pages and article pages with goquery.
type HTMLExtractor struct {
	maxLinks int
	logger   *slog.Logger
}

var _ ports.Extractor = (*HTMLExtractor)(nil)

// NewHTMLExtractor builds an extractor; maxLinks defaults to DefaultMaxLinks.
func NewHTMLExtractor(maxLinks int, logger *slog.Logger) *HTMLExtractor {
	if maxLinks <= 0 {
		maxLinks = DefaultMaxLinks
	}
	return &HTMLExtractor{maxLinks: maxLinks, logger: logger}
}

// ExtractLinks returns de-duplicated absolute http(s) links found on a landing page.
// RSS and Atom documents are read as feeds.
func (e *HTMLExtractor) ExtractLinks(document []byte, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %s: %w", baseURL, err)
	}

	var hrefs []string
	if looksLikeFeed(document) {
		hrefs, err = feedLinks(document)
		if err != nil {
			e.debug("feed parse failed, falling back to html", "url", baseURL, "error", err)
			hrefs = nil
		}
	}

	if hrefs == nil {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
		if err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			hrefs = append(hrefs, href)
		})
	}

	links := collectLinks(base, hrefs, e.maxLinks)
	e.debug("links extracted", "url", baseURL, "candidates", len(hrefs), "kept", len(links))
	return links, nil
}

func collectLinks(base *url.URL, hrefs []string, limit int) []string {
	seen := map[string]struct{}{}
	links := make([]string, 0, limit)

	for _, href := range hrefs {
		if len(links) >= limit {
			break
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		abs.Fragment = ""
		abs.RawFragment = ""

		link := abs.String()
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	return links
}

// ExtractArticle parses title, content and publication date from an article page.
func (e *HTMLExtractor) ExtractArticle(document []byte) (domain.ExtractedArticle, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
	if err != nil {
		return domain.ExtractedArticle{}, fmt.Errorf("parse document: %w", err)
	}

	title := extractTitle(doc)
	if title == "" {
		return domain.ExtractedArticle{}, &domain.ExtractionError{Kind: domain.MissingTitle}
	}

	content := extractContent(doc)
	if content == "" {
		return domain.ExtractedArticle{}, &domain.ExtractionError{Kind: domain.MissingContent}
	}

	return domain.ExtractedArticle{
		Title:       title,
		Content:     content,
		PublishedAt: extractPublishedAt(doc),
	}, nil
}

func extractTitle(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		title := strings.Join(strings.Fields(doc.Find(sel).First().Text()), " ")
		if title != "" {
			return title
		}
	}
	return ""
}

func extractContent(doc *goquery.Document) string {
	for _, sel := range contentSelectors {
		paragraphs := doc.Find(sel)
		if paragraphs.Length() == 0 {
			continue
		}

		parts := make([]string, 0, paragraphs.Length())
		paragraphs.Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		// only blank paragraphs here; try the next selector
		if len(parts) == 0 {
			continue
		}
		return strings.Join(parts, "\n\n")
	}
	return ""
}

func extractPublishedAt(doc *goquery.Document) *time.Time {
	for _, sel := range dateSelectors {
		var found *time.Time
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, attr := range dateAttributes {
				if v, ok := s.Attr(attr); ok {
					if t, ok := parseDate(v); ok {
						found = &t
						return false
					}
				}
			}
			if t, ok := parseDate(s.Text()); ok {
				found = &t
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), true
	}
	if t, err := dateparse.ParseIn(value, time.UTC); err == nil {
		return t.UTC(), true
	}
	if match := dateExpr.FindString(value); match != "" {
		if t, err := time.Parse("2 Jan 2006", match); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (e *HTMLExtractor) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
