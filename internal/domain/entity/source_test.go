package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFlagLookup(t *testing.T) {
	regions := []Region{
		{
			Code: "EU",
			Name: "European Union",
			Countries: []Country{
				{Code: "DE", Name: "Germany", Flag: "🇩🇪"},
				{Code: "FR", Name: "France", Flag: "🇫🇷"},
			},
		},
		{
			Code: "EUROPE",
			Name: "Europe (wider)",
			Countries: []Country{
				{Code: "DE", Name: "Germany", Flag: "DE-override"},
				{Code: "NO", Name: "Norway", Flag: ""},
			},
		},
	}

	flags := NewFlagLookup(regions)

	tests := []struct {
		name string
		code string
		want string
	}{
		{name: "known code", code: "FR", want: "🇫🇷"},
		{name: "last write wins", code: "DE", want: "DE-override"},
		{name: "empty flag falls back", code: "NO", want: DefaultFlag},
		{name: "unknown code", code: "ZZ", want: DefaultFlag},
		{name: "missing code", code: "", want: DefaultFlag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flags.Flag(tt.code))
		})
	}
}

func TestFlagLookup_NilIsTotal(t *testing.T) {
	var flags FlagLookup
	assert.Equal(t, DefaultFlag, flags.Flag("SA"))
}

func TestDataset_ArticleCount(t *testing.T) {
	var nilDataset *Dataset
	assert.Equal(t, 0, nilDataset.ArticleCount())

	ds := &Dataset{News: NewsData{Articles: []Article{{ID: "a"}, {ID: "b"}}}}
	assert.Equal(t, 2, ds.ArticleCount())
}
