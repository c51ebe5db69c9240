// Package filter narrows a list of articles by the user's filter criteria and
// orders the result newest first.
package filter

import (
	"slices"
	"strings"
	"time"

	"einvoice-news/internal/domain/entity"
)

// Apply returns the articles matching c, sorted by publishedAt descending.
// Stages with an empty selection pass everything through. The input slice is
// never modified; the result is always a new slice, even when no filter is set.
//
// now is evaluated once by the caller so that every article in a pass is
// compared against the same cutoff.
func Apply(articles []entity.Article, c entity.FilterCriteria, now time.Time) []entity.Article {
	since, hasSince := c.Since(now)
	query := c.NormalizedQuery()

	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if len(c.Regions) > 0 && !slices.Contains(c.Regions, a.Region) {
			continue
		}
		if len(c.Sources) > 0 && !slices.Contains(c.Sources, a.Source.ID) {
			continue
		}
		if len(c.Categories) > 0 && !overlaps(a.Categories, c.Categories) {
			continue
		}
		if hasSince && a.PublishedAt.Before(since) {
			continue
		}
		if query != "" && !matches(a, query) {
			continue
		}
		out = append(out, a)
	}

	SortNewestFirst(out)
	return out
}

// SortNewestFirst sorts articles in place by publishedAt descending. Articles
// with equal timestamps keep their relative order.
func SortNewestFirst(articles []entity.Article) {
	slices.SortStableFunc(articles, func(a, b entity.Article) int {
		return b.PublishedAt.Compare(a.PublishedAt.Time)
	})
}

func overlaps(have, want []string) bool {
	for _, id := range have {
		if slices.Contains(want, id) {
			return true
		}
	}
	return false
}

// matches reports whether the lower-cased query occurs in the article's title,
// summary, country name or source name.
func matches(a entity.Article, query string) bool {
	if strings.Contains(strings.ToLower(a.Title), query) ||
		strings.Contains(strings.ToLower(a.Summary), query) ||
		strings.Contains(strings.ToLower(a.Source.Name), query) {
		return true
	}
	return a.CountryName != nil && strings.Contains(strings.ToLower(*a.CountryName), query)
}
