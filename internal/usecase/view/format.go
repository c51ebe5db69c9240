package view

import (
	"fmt"
	"time"

	"einvoice-news/internal/domain/entity"
)

// DefaultCategoryColor is used for categories without a configured colour.
const DefaultCategoryColor = "#6b7280"

// CategoryColor returns the colour configured for the category id.
func CategoryColor(categories []entity.Category, id string) string {
	for _, c := range categories {
		if c.ID == id && c.Color != "" {
			return c.Color
		}
	}
	return DefaultCategoryColor
}

// FormatDate renders t as "Jan 2, 2006".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatRelative renders the age of t at now. Timestamps in the future read as
// "just now".
func FormatRelative(t, now time.Time) string {
	age := now.Sub(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return plural(int(age/time.Minute), "min")
	case age < 24*time.Hour:
		return plural(int(age/time.Hour), "hour")
	case age < 7*24*time.Hour:
		return plural(int(age/(24*time.Hour)), "day")
	case age < 30*24*time.Hour:
		return plural(int(age/(7*24*time.Hour)), "week")
	default:
		return t.Format("Jan 2")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
