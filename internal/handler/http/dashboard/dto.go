package dashboard

import (
	"time"

	"einvoice-news/internal/common/pagination"
	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/usecase/view"
)

// CategoryTag is an article category resolved against the category list.
type CategoryTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ArticleDTO is an article ready for display.
type ArticleDTO struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Summary           string           `json:"summary"`
	URL               string           `json:"url,omitempty"`
	Source            entity.SourceRef `json:"source"`
	Section           view.Section     `json:"section"`
	Region            string           `json:"region"`
	Country           string           `json:"country,omitempty"`
	CountryName       string           `json:"countryName,omitempty"`
	Flag              string           `json:"flag"`
	Categories        []CategoryTag    `json:"categories"`
	PublishedAt       time.Time        `json:"publishedAt"`
	PublishedDate     string           `json:"publishedDate"`
	PublishedRelative string           `json:"publishedRelative"`
}

// ArticlesResponse is one page of the filtered article list.
type ArticlesResponse struct {
	pagination.Response[ArticleDTO]
	Criteria         entity.FilterCriteria `json:"criteria"`
	HasActiveFilters bool                  `json:"hasActiveFilters"`
	LastUpdated      time.Time             `json:"lastUpdated"`
	CrawlStatus      string                `json:"crawlStatus"`
}

// ViewsResponse is the sectioned dashboard view.
type ViewsResponse struct {
	Criteria         entity.FilterCriteria `json:"criteria"`
	HasActiveFilters bool                  `json:"hasActiveFilters"`
	Total            int                   `json:"total"`
	Government       []ArticleDTO          `json:"government"`
	Other            []ArticleDTO          `json:"other"`
	Vendor           []ArticleDTO          `json:"vendor"`
	Countries        []view.CountryGroup   `json:"countries"`
	LastUpdated      time.Time             `json:"lastUpdated"`
	CrawlStatus      string                `json:"crawlStatus"`
}

// CountryResponse lists the government articles of one country.
type CountryResponse struct {
	Code     string       `json:"code"`
	Flag     string       `json:"flag"`
	Articles []ArticleDTO `json:"articles"`
}

// MetaResponse describes the loaded dataset.
type MetaResponse struct {
	Regions             []entity.Region   `json:"regions"`
	Sources             []entity.Source   `json:"sources"`
	Categories          []entity.Category `json:"categories"`
	LastUpdated         time.Time         `json:"lastUpdated"`
	LastUpdatedRelative string            `json:"lastUpdatedRelative"`
	CrawlStatus         string            `json:"crawlStatus"`
	TotalArticles       int               `json:"totalArticles"`
	LoadedAt            time.Time         `json:"loadedAt"`
	Loading             bool              `json:"loading"`
}

// presenter turns articles into DTOs against one dataset snapshot.
type presenter struct {
	categories map[string]entity.Category
	flags      entity.FlagLookup
	now        time.Time
}

func newPresenter(ds *entity.Dataset, now time.Time) presenter {
	cats := make(map[string]entity.Category, len(ds.Categories))
	for _, c := range ds.Categories {
		cats[c.ID] = c
	}
	return presenter{categories: cats, flags: ds.Flags, now: now}
}

func (p presenter) article(a entity.Article) ArticleDTO {
	tags := make([]CategoryTag, 0, len(a.Categories))
	for _, id := range a.Categories {
		tag := CategoryTag{ID: id, Name: id, Color: view.DefaultCategoryColor}
		if c, ok := p.categories[id]; ok {
			if c.Name != "" {
				tag.Name = c.Name
			}
			if c.Color != "" {
				tag.Color = c.Color
			}
		}
		tags = append(tags, tag)
	}

	dto := ArticleDTO{
		ID:                a.ID,
		Title:             a.Title,
		Summary:           a.Summary,
		URL:               a.URL,
		Source:            a.Source,
		Section:           view.SectionOf(a.Source.Type),
		Region:            a.Region,
		Country:           a.CountryCode(),
		Flag:              p.flags.Flag(a.CountryCode()),
		Categories:        tags,
		PublishedAt:       a.PublishedAt.Time,
		PublishedDate:     view.FormatDate(a.PublishedAt.Time),
		PublishedRelative: view.FormatRelative(a.PublishedAt.Time, p.now),
	}
	if a.CountryName != nil {
		dto.CountryName = *a.CountryName
	}
	return dto
}

func (p presenter) articles(list []entity.Article) []ArticleDTO {
	out := make([]ArticleDTO, len(list))
	for i, a := range list {
		out[i] = p.article(a)
	}
	return out
}
