// Package view projects a filtered article list into the dashboard's three
// sections and provides the pure presentation helpers used to render them.
package view

import "einvoice-news/internal/domain/entity"

// GlobalCountryName labels government articles that carry no country.
const GlobalCountryName = "Global"

// Section names a dashboard section.
type Section string

// Dashboard sections.
const (
	SectionGovernment Section = "government"
	SectionOther      Section = "other"
	SectionVendor     Section = "vendor"
)

// SectionOf maps a source type to its section. Types outside the known set
// are shown with the other news.
func SectionOf(t entity.SourceType) Section {
	switch t {
	case entity.SourceTypeOfficial:
		return SectionGovernment
	case entity.SourceTypeVendor, entity.SourceTypeTaxTech:
		return SectionVendor
	default:
		return SectionOther
	}
}

// Partitions is the filtered list split by section.
type Partitions struct {
	Government []entity.Article `json:"government"`
	Other      []entity.Article `json:"other"`
	Vendor     []entity.Article `json:"vendor"`
}

// Len returns the number of articles across all sections.
func (p Partitions) Len() int {
	return len(p.Government) + len(p.Other) + len(p.Vendor)
}

// Partition splits filtered into sections. Every article lands in exactly one
// section and keeps its relative order.
func Partition(filtered []entity.Article) Partitions {
	p := Partitions{
		Government: []entity.Article{},
		Other:      []entity.Article{},
		Vendor:     []entity.Article{},
	}
	for _, a := range filtered {
		switch SectionOf(a.Source.Type) {
		case SectionGovernment:
			p.Government = append(p.Government, a)
		case SectionVendor:
			p.Vendor = append(p.Vendor, a)
		default:
			p.Other = append(p.Other, a)
		}
	}
	return p
}

// CountryGroup is one country heading of the government section.
type CountryGroup struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Flag  string `json:"flag"`
	Count int    `json:"count"`
}

// GovernmentCountries lists the distinct countries of the government articles
// in first-seen order. Articles without a country are grouped under an empty
// code named GlobalCountryName.
func GovernmentCountries(government []entity.Article, flags entity.FlagLookup) []CountryGroup {
	groups := []CountryGroup{}
	index := make(map[string]int)
	for _, a := range government {
		code := a.CountryCode()
		if i, ok := index[code]; ok {
			groups[i].Count++
			continue
		}
		index[code] = len(groups)
		groups = append(groups, CountryGroup{
			Code:  code,
			Name:  countryName(a),
			Flag:  flags.Flag(code),
			Count: 1,
		})
	}
	return groups
}

func countryName(a entity.Article) string {
	if a.CountryName != nil && *a.CountryName != "" {
		return *a.CountryName
	}
	if code := a.CountryCode(); code != "" {
		return code
	}
	return GlobalCountryName
}

// ByCountry returns the government articles for code. The empty code selects
// articles without a country.
func ByCountry(government []entity.Article, code string) []entity.Article {
	out := []entity.Article{}
	for _, a := range government {
		if a.CountryCode() == code {
			out = append(out, a)
		}
	}
	return out
}
