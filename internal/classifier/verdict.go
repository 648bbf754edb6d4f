package classifier

import (
	"fmt"
	"slices"

	"CrimeScanner/internal/domain"
)

// FromScore builds a classification from an externally computed score and category.
// The label follows the keyword thresholds; names outside the catalog are dropped.
func FromScore(score int, category string) (domain.Classification, error) {
	if score < -100 || score > 100 {
		return domain.Classification{}, fmt.Errorf("score %d out of range", score)
	}
	result := domain.Classification{Sentiment: SentimentLabel(score), SentimentScore: score}
	if slices.Contains(CategoryNames(), category) {
		result.CategoryName = category
	}
	return result, nil
}
