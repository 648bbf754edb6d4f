package classifier

import (
	"math"
	"regexp"
	"strings"

	"CrimeScanner/internal/domain"
)

const sentimentThreshold = 20

var nonWord = regexp.MustCompile(`\W+`)

var positiveWords = wordSet(
	"good", "great", "excellent", "positive", "success", "successful",
	"rescued", "saved", "recovered", "found", "resolved", "arrested",
	"captured", "justice", "solve", "solved", "conviction",
)

var negativeWords = wordSet(
	"bad", "terrible", "horrible", "negative", "failure", "crime", "criminal",
	"murder", "killed", "dead", "injured", "stolen", "robbery", "attack",
	"fraud", "corruption", "kidnap", "kidnapped", "victim", "violence",
)

// ScoreSentiment counts positive and negative keyword hits in text and
// returns the label and a score in [-100, 100].
func ScoreSentiment(text string) (domain.Sentiment, int) {
	var positive, negative int
	for _, word := range nonWord.Split(strings.ToLower(text), -1) {
		if _, ok := positiveWords[word]; ok {
			positive++
		}
		if _, ok := negativeWords[word]; ok {
			negative++
		}
	}

	score := 0
	if total := positive + negative; total > 0 {
		// half-up rounding, so -12.5 becomes -12
		score = int(math.Floor(float64(100*(positive-negative))/float64(total) + 0.5))
	}

	return SentimentLabel(score), score
}

// SentimentLabel maps a score to its label; the ±20 bounds are neutral.
func SentimentLabel(score int) domain.Sentiment {
	switch {
	case score < -sentimentThreshold:
		return domain.SentimentNegative
	case score > sentimentThreshold:
		return domain.SentimentPositive
	default:
		return domain.SentimentNeutral
	}
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
