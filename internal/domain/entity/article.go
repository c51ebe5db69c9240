// Package entity defines the core domain entities of the news dashboard.
// It contains the article, region, source and category records loaded from the
// published datasets, together with the filter criteria and session values that
// the use cases pass around.
package entity

import "slices"

// SourceType classifies where an article came from. It drives the partitioning
// of the dashboard views.
type SourceType string

// Known source types.
const (
	SourceTypeOfficial   SourceType = "official"
	SourceTypeAdvisory   SourceType = "advisory"
	SourceTypeNews       SourceType = "news"
	SourceTypeAggregator SourceType = "aggregator"
	SourceTypeSocial     SourceType = "social"
	SourceTypeVendor     SourceType = "vendor"
	SourceTypeTaxTech    SourceType = "taxtech"
)

// SourceTypes lists every known source type in declaration order.
var SourceTypes = []SourceType{
	SourceTypeOfficial,
	SourceTypeAdvisory,
	SourceTypeNews,
	SourceTypeAggregator,
	SourceTypeSocial,
	SourceTypeVendor,
	SourceTypeTaxTech,
}

// Known reports whether t is one of the enumerated source types.
func (t SourceType) Known() bool {
	return slices.Contains(SourceTypes, t)
}

// SourceRef is the source summary embedded in every article.
type SourceRef struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type SourceType `json:"type"`
}

// Article represents one aggregated news item.
// Articles are immutable once loaded; identity is the ID within a load cycle.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url,omitempty"`
	Source      SourceRef `json:"source"`
	Region      string    `json:"region"`
	Country     *string   `json:"country"`
	CountryName *string   `json:"countryName"`
	Categories  []string  `json:"categories"`
	PublishedAt Timestamp `json:"publishedAt"`
	CrawledAt   Timestamp `json:"crawledAt,omitzero"`
}

// CountryCode returns the article's country code, or "" when it has none.
func (a Article) CountryCode() string {
	if a.Country == nil {
		return ""
	}
	return *a.Country
}

// HasCategory reports whether the article is tagged with the category id.
func (a Article) HasCategory(id string) bool {
	return slices.Contains(a.Categories, id)
}

// NewsData is the decoded form of news.json.
type NewsData struct {
	LastUpdated   Timestamp `json:"lastUpdated"`
	CrawlStatus   string    `json:"crawlStatus"`
	TotalArticles int       `json:"totalArticles"`
	Articles      []Article `json:"articles"`
}
