package domain

import "time"

// Sentiment is the polarity label attached to an article.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether s is one of the known labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	default:
		return false
	}
}

// Article is the stored record produced by the ingestion pipeline.
type Article struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	URL            string         `json:"url"`
	SourceID       int64          `json:"sourceId"`
	CategoryID     *int64         `json:"categoryId"`
	PublishedAt    *time.Time     `json:"publishedAt"`
	ScrapedAt      time.Time      `json:"scrapedAt"`
	Sentiment      *Sentiment     `json:"sentiment"`
	SentimentScore *int           `json:"sentimentScore"`
	Metadata       map[string]any `json:"metadata"`
}

// NewArticle carries the fields a caller supplies on creation.
type NewArticle struct {
	Title          string
	Content        string
	URL            string
	SourceID       int64
	CategoryID     *int64
	PublishedAt    *time.Time
	Sentiment      *Sentiment
	SentimentScore *int
	Metadata       map[string]any
}

// ArticleUpdate lists mutable fields; nil means unchanged.
type ArticleUpdate struct {
	Title          *string
	Content        *string
	URL            *string
	SourceID       *int64
	CategoryID     *int64
	ClearCategory  bool
	PublishedAt    *time.Time
	Sentiment      *Sentiment
	SentimentScore *int
	Metadata       map[string]any
}

// Apply returns a copy of a with the update applied. ID and ScrapedAt never change.
func (u ArticleUpdate) Apply(a Article) Article {
	if u.Title != nil {
		a.Title = *u.Title
	}
	if u.Content != nil {
		a.Content = *u.Content
	}
	if u.URL != nil {
		a.URL = *u.URL
	}
	if u.SourceID != nil {
		a.SourceID = *u.SourceID
	}
	if u.ClearCategory {
		a.CategoryID = nil
	} else if u.CategoryID != nil {
		id := *u.CategoryID
		a.CategoryID = &id
	}
	if u.PublishedAt != nil {
		t := *u.PublishedAt
		a.PublishedAt = &t
	}
	if u.Sentiment != nil {
		s := *u.Sentiment
		a.Sentiment = &s
	}
	if u.SentimentScore != nil {
		score := *u.SentimentScore
		a.SentimentScore = &score
	}
	if u.Metadata != nil {
		a.Metadata = u.Metadata
	}
	return a
}

// ArticleWithDetails is an article with its source and category resolved.
type ArticleWithDetails struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Content        string           `json:"content"`
	URL            string           `json:"url"`
	PublishedAt    *time.Time       `json:"publishedAt"`
	ScrapedAt      time.Time        `json:"scrapedAt"`
	Sentiment      *Sentiment       `json:"sentiment"`
	SentimentScore *int             `json:"sentimentScore"`
	Metadata       map[string]any   `json:"metadata"`
	Source         SourceSummary    `json:"source"`
	Category       *CategorySummary `json:"category"`
}

// WithDetails joins a with already resolved source and category.
func (a Article) WithDetails(src Source, cat *Category) ArticleWithDetails {
	details := ArticleWithDetails{
		ID:             a.ID,
		Title:          a.Title,
		Content:        a.Content,
		URL:            a.URL,
		PublishedAt:    a.PublishedAt,
		ScrapedAt:      a.ScrapedAt,
		Sentiment:      a.Sentiment,
		SentimentScore: a.SentimentScore,
		Metadata:       a.Metadata,
		Source:         src.Summary(),
	}
	if cat != nil {
		summary := cat.Summary()
		details.Category = &summary
	}
	return details
}

// ArticlePage is one page of a filtered query plus the pre-pagination total.
type ArticlePage struct {
	Articles []ArticleWithDetails `json:"articles"`
	Total    int                  `json:"total"`
}

// ExtractedArticle holds the structured fields parsed from an article page.
type ExtractedArticle struct {
	Title       string
	Content     string
	PublishedAt *time.Time
}

// Classification is the classifier verdict for a title/content pair.
type Classification struct {
	Sentiment      Sentiment
	SentimentScore int
	// CategoryName is empty when no category reached the threshold.
	CategoryName string
}
