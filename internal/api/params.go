package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"CrimeScanner/internal/domain"
)

const dateOnly = "2006-01-02"

// parseFilter reads the article query string. List parameters accept
// comma-separated values, repeated keys, or both.
func parseFilter(c *gin.Context) (domain.ArticleFilter, error) {
	var (
		filter domain.ArticleFilter
		err    error
	)

	if filter.CategoryIDs, err = parseIDs(c, "categoryIds"); err != nil {
		return filter, err
	}
	if filter.SourceIDs, err = parseIDs(c, "sourceIds"); err != nil {
		return filter, err
	}
	for _, v := range listParam(c, "sentiments") {
		s := domain.Sentiment(strings.ToLower(v))
		if !s.Valid() {
			return filter, &domain.ValidationError{Field: "sentiments", Reason: "unknown sentiment " + v}
		}
		filter.Sentiments = append(filter.Sentiments, s)
	}

	if raw := c.Query("dateFrom"); raw != "" {
		t, err := parseDate(raw, false)
		if err != nil {
			return filter, &domain.ValidationError{Field: "dateFrom", Reason: "must be YYYY-MM-DD or RFC3339"}
		}
		filter.DateFrom = &t
	}
	if raw := c.Query("dateTo"); raw != "" {
		t, err := parseDate(raw, true)
		if err != nil {
			return filter, &domain.ValidationError{Field: "dateTo", Reason: "must be YYYY-MM-DD or RFC3339"}
		}
		filter.DateTo = &t
	}

	filter.SearchTerm = strings.TrimSpace(c.Query("searchTerm"))

	if filter.Page, err = intParam(c, "page"); err != nil {
		return filter, err
	}
	if filter.PageSize, err = intParam(c, "pageSize"); err != nil {
		return filter, err
	}
	if raw := c.Query("page"); raw != "" && filter.Page == 0 {
		return filter, &domain.ValidationError{Field: "page", Reason: "must be at least 1"}
	}
	if raw := c.Query("pageSize"); raw != "" && filter.PageSize == 0 {
		return filter, &domain.ValidationError{Field: "pageSize", Reason: "must be at least 1"}
	}

	filter.SortBy = domain.SortField(c.Query("sortBy"))
	filter.SortOrder = domain.SortOrder(strings.ToLower(c.Query("sortOrder")))
	return filter, nil
}

func listParam(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseIDs(c *gin.Context, key string) ([]int64, error) {
	values := listParam(c, key)
	if len(values) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, &domain.ValidationError{Field: key, Reason: "must be a comma-separated list of integers"}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func intParam(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: key, Reason: "must be an integer"}
	}
	return n, nil
}

// parseDate accepts a calendar date or an RFC3339 timestamp. A calendar date used
// as an upper bound covers the whole day in UTC.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
