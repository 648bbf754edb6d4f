package domain

import (
	"math"
	"testing"
	"time"
)

func TestFilterOffset(t *testing.T) {
	t.Parallel()

	cases := []struct {
		page, size int
		want       int
	}{
		{1, 10, 0},
		{3, 10, 20},
		{math.MaxInt, 100, math.MaxInt},
		{math.MaxInt/100 + 2, 100, math.MaxInt},
		{math.MaxInt/100 + 1, 100, math.MaxInt / 100 * 100},
		{0, 10, 0},
	}
	for _, tc := range cases {
		f := ArticleFilter{Page: tc.page, PageSize: tc.size}
		if got := f.Offset(); got != tc.want {
			t.Errorf("Offset(page=%d, size=%d) = %d, want %d", tc.page, tc.size, got, tc.want)
		}
	}
}

func TestFilterNormalizeCapsPageSize(t *testing.T) {
	t.Parallel()

	f := ArticleFilter{PageSize: 5000}.Normalize()
	if f.PageSize != MaxPageSize {
		t.Fatalf("PageSize = %d, want %d", f.PageSize, MaxPageSize)
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestFilterValidateAllowsInvertedDates(t *testing.T) {
	t.Parallel()

	from := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	if err := (ArticleFilter{DateFrom: &from, DateTo: &to}).Normalize().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestFilterValidateRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, f := range []ArticleFilter{
		{Page: -1},
		{PageSize: -5},
		{SortBy: "popularity"},
		{SortOrder: "sideways"},
		{Sentiments: []Sentiment{"angry"}},
	} {
		if err := f.Normalize().Validate(); !IsValidation(err) {
			t.Errorf("Validate(%+v) = %v, want validation error", f, err)
		}
	}
}
