package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNewsJSON = `{
  "lastUpdated": "2026-01-03T08:00:00.000000Z",
  "crawlStatus": "success",
  "totalArticles": 2,
  "articles": [
    {
      "id": "zatca-1",
      "title": "ZATCA announces wave 20",
      "summary": "Phase 2 integration",
      "url": "https://zatca.gov.sa/news/1",
      "source": {"id": "zatca", "name": "ZATCA", "type": "official"},
      "region": "GCC",
      "country": "SA",
      "countryName": "Saudi Arabia",
      "categories": ["mandate", "deadline"],
      "publishedAt": "2026-01-02T09:30:00",
      "crawledAt": "2026-01-03T08:00:00.123456"
    },
    {
      "id": "vatupdate-7",
      "title": "Global roundup",
      "summary": "",
      "url": "https://vatupdate.com/7",
      "source": {"id": "vatupdate", "name": "VATupdate", "type": "aggregator"},
      "region": "global",
      "country": null,
      "countryName": null,
      "categories": ["update"],
      "publishedAt": "2026-01-01T00:00:00"
    }
  ]
}`

func TestNewsData_Decode(t *testing.T) {
	var news NewsData
	require.NoError(t, json.Unmarshal([]byte(sampleNewsJSON), &news))

	assert.Equal(t, "success", news.CrawlStatus)
	assert.Equal(t, 2, news.TotalArticles)
	require.Len(t, news.Articles, 2)

	first := news.Articles[0]
	assert.Equal(t, "zatca-1", first.ID)
	assert.Equal(t, SourceTypeOfficial, first.Source.Type)
	assert.Equal(t, "SA", first.CountryCode())
	assert.True(t, first.HasCategory("deadline"))
	assert.False(t, first.HasCategory("vat"))
	assert.False(t, first.CrawledAt.IsZero())

	second := news.Articles[1]
	assert.Nil(t, second.Country)
	assert.Nil(t, second.CountryName)
	assert.Equal(t, "", second.CountryCode())
	assert.True(t, second.CrawledAt.IsZero())
}

func TestSourceType_Known(t *testing.T) {
	for _, st := range SourceTypes {
		assert.True(t, st.Known(), st)
	}
	assert.False(t, SourceType("blog").Known())
	assert.False(t, SourceType("").Known())
}
