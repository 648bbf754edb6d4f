package domain

import "time"

// CategoryCount is the number of articles labeled with one category.
type CategoryCount struct {
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Count        int    `json:"count"`
}

// SourceCount is the number of articles from Nigerian or international sources.
type SourceCount struct {
	IsNigerian bool `json:"isNigerian"`
	Count      int  `json:"count"`
}

// SentimentCount is the number of articles with one sentiment label.
type SentimentCount struct {
	Sentiment Sentiment `json:"sentiment"`
	Count     int       `json:"count"`
}

// ArticleStats aggregates the corpus.
type ArticleStats struct {
	CategoryCounts  []CategoryCount  `json:"categoryCounts"`
	SourceCounts    []SourceCount    `json:"sourceCounts"`
	SentimentCounts []SentimentCount `json:"sentimentCounts"`
	Total           int              `json:"total"`
}

// UnknownCategoryName labels counts whose category no longer resolves.
const UnknownCategoryName = "Unknown"

// SweepReport summarizes one ingestion sweep.
type SweepReport struct {
	Sources       int       `json:"sources"`
	SourcesFailed int       `json:"sourcesFailed"`
	Links         int       `json:"links"`
	Created       int       `json:"created"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
}

// Duration is the wall time of the sweep.
func (r SweepReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
