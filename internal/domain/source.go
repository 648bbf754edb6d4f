package domain

import "time"

// Source is an external news site crawled by the pipeline.
type Source struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Logo       string    `json:"logo,omitempty"`
	Country    string    `json:"country"`
	IsNigerian bool      `json:"isNigerian"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewSource is the creation input for a source.
type NewSource struct {
	Name       string
	URL        string
	Logo       string
	Country    string
	IsNigerian bool
	IsActive   bool
}

// SourceSummary is the embedded view of a source inside article responses.
type SourceSummary struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	URL        string  `json:"url"`
	Logo       *string `json:"logo"`
	Country    string  `json:"country"`
	IsNigerian bool    `json:"isNigerian"`
}

// Summary projects s to its embedded view.
func (s Source) Summary() SourceSummary {
	summary := SourceSummary{
		ID:         s.ID,
		Name:       s.Name,
		URL:        s.URL,
		Country:    s.Country,
		IsNigerian: s.IsNigerian,
	}
	if s.Logo != "" {
		logo := s.Logo
		summary.Logo = &logo
	}
	return summary
}
