package classifier

import (
	"regexp"
	"strings"

	"CrimeScanner/internal/domain"
)

// MinCategoryScore is the lowest winning score that still assigns a category.
const MinCategoryScore = 2

type categoryRule struct {
	name     string
	patterns []*regexp.Regexp
}

// categoryRules is evaluated in order; earlier rules win ties.
var categoryRules = []categoryRule{
	rule(domain.CategoryMurder, "murder", "kill", "homicide", "manslaughter", "deadly", "stab"),
	rule(domain.CategoryRobbery, "robbery", "steal", "stole", "theft", "burglary", "loot"),
	rule(domain.CategoryCybercrime, "cyber", "hack", "hacker", "phishing", "malware", "ransomware", "online fraud"),
	rule(domain.CategoryKidnapping, "kidnap", "abduct", "hostage", "ransom", "missing person"),
	rule(domain.CategoryFraud, "fraud", "scam", "embezzle", "ponzi", "fake", "counterfeit"),
	rule(domain.CategoryDrugTrafficking, "drug", "narcotic", "cocaine", "heroin", "cannabis", "trafficking"),
	rule(domain.CategoryTerrorism, "terror", "bomb", "explosion", "attack", "extremist", "militant"),
	rule(domain.CategoryCorruption, "corrupt", "bribe", "graft", "extort", "misappropriation"),
}

func rule(name string, keywords ...string) categoryRule {
	patterns := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\w*\b`))
	}
	return categoryRule{name: name, patterns: patterns}
}

// CategoryScores returns the keyword score of every category, in rule order.
func CategoryScores(title, content string) []CategoryScore {
	text := strings.ToLower(title + " " + title + " " + content)

	scores := make([]CategoryScore, 0, len(categoryRules))
	for _, r := range categoryRules {
		score := 0
		for _, p := range r.patterns {
			score += len(p.FindAllStringIndex(text, -1))
		}
		scores = append(scores, CategoryScore{Name: r.name, Score: score})
	}
	return scores
}

// CategoryScore pairs a category name with its keyword score.
type CategoryScore struct {
	Name  string
	Score int
}

// Categorize picks the best scoring category name. The title counts twice.
// It returns false when the best score is below MinCategoryScore.
func Categorize(title, content string) (string, bool) {
	best, highest := "", 0
	for _, s := range CategoryScores(title, content) {
		if s.Score > highest {
			best, highest = s.Name, s.Score
		}
	}
	if highest < MinCategoryScore || best == "" {
		return "", false
	}
	return best, true
}

// CategoryNames lists the categories the keyword rules can produce, in rule order.
func CategoryNames() []string {
	names := make([]string, 0, len(categoryRules))
	for _, r := range categoryRules {
		names = append(names, r.name)
	}
	return names
}
