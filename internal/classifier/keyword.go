package classifier

import (
	"context"

	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

// KeywordName identifies the keyword classifier inside the registry.
const KeywordName = "keyword"

// Keyword is the deterministic rule-based classifier.
type Keyword struct{}

var _ ports.Classifier = (*Keyword)(nil)

// NewKeyword returns the keyword classifier.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// Name identifies the strategy inside the registry.
func (k *Keyword) Name() string {
	return KeywordName
}

// Classify scores sentiment on the content and picks a category from title and content.
func (k *Keyword) Classify(_ context.Context, title, content string) (domain.Classification, error) {
	label, score := ScoreSentiment(content)
	result := domain.Classification{Sentiment: label, SentimentScore: score}
	if name, ok := Categorize(title, content); ok {
		result.CategoryName = name
	}
	return result, nil
}
