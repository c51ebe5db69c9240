package entity

import "time"

// DefaultFlag is the glyph used for articles without a known country.
const DefaultFlag = "🌐"

// Country is one country entry of a region.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Region groups countries under a region code such as "EU" or "GCC".
type Region struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Countries []Country `json:"countries"`
}

// Source describes a publisher of articles.
type Source struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type SourceType `json:"type"`
}

// Category is an article tag with its display colour.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// RegionsData is the decoded form of regions.json.
type RegionsData struct {
	Regions []Region `json:"regions"`
}

// SourcesData is the decoded form of sources.json.
type SourcesData struct {
	Sources    []Source   `json:"sources"`
	Categories []Category `json:"categories"`
}

// Dataset is one fully loaded snapshot of the published documents.
// A Dataset is never modified after construction.
type Dataset struct {
	News       NewsData
	Regions    []Region
	Sources    []Source
	Categories []Category
	Flags      FlagLookup
	LoadedAt   time.Time
}

// ArticleCount returns the number of loaded articles. A nil dataset has none.
func (d *Dataset) ArticleCount() int {
	if d == nil {
		return 0
	}
	return len(d.News.Articles)
}

// FlagLookup maps country codes to flag glyphs.
type FlagLookup map[string]string

// NewFlagLookup flattens the countries of all regions in order.
// When a code appears more than once the last entry wins.
func NewFlagLookup(regions []Region) FlagLookup {
	flags := make(FlagLookup)
	for _, r := range regions {
		for _, c := range r.Countries {
			flags[c.Code] = c.Flag
		}
	}
	return flags
}

// Flag returns the flag for code, falling back to DefaultFlag for empty or
// unknown codes.
func (f FlagLookup) Flag(code string) string {
	if code == "" {
		return DefaultFlag
	}
	if flag, ok := f[code]; ok && flag != "" {
		return flag
	}
	return DefaultFlag
}
