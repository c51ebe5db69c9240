package view_test

import (
	"testing"
	"time"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/usecase/view"

	"github.com/stretchr/testify/assert"
)

func TestCategoryColor(t *testing.T) {
	cats := []entity.Category{
		{ID: "vat", Name: "VAT", Color: "#2563eb"},
		{ID: "ctc", Name: "CTC"},
	}
	assert.Equal(t, "#2563eb", view.CategoryColor(cats, "vat"))
	assert.Equal(t, view.DefaultCategoryColor, view.CategoryColor(cats, "ctc"))
	assert.Equal(t, "#6b7280", view.CategoryColor(cats, "unknown"))
	assert.Equal(t, "#6b7280", view.CategoryColor(nil, "vat"))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, 1, 3, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "Jan 3, 2026", view.FormatDate(ts))
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		age  time.Duration
		want string
	}{
		{-time.Hour, "just now"},
		{0, "just now"},
		{59 * time.Second, "just now"},
		{60 * time.Second, "1 min ago"},
		{90 * time.Second, "1 min ago"},
		{2 * time.Minute, "2 mins ago"},
		{59 * time.Minute, "59 mins ago"},
		{time.Hour, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{25 * time.Hour, "1 day ago"},
		{6 * 24 * time.Hour, "6 days ago"},
		{7 * 24 * time.Hour, "1 week ago"},
		{29 * 24 * time.Hour, "4 weeks ago"},
		{30 * 24 * time.Hour, "Feb 13"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, view.FormatRelative(now.Add(-tt.age), now))
		})
	}
}
