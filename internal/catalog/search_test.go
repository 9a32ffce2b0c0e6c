package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/entity"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Freijó":             "freijo",
		"  CEDRO   Rosá \t":  "cedro rosa",
		"Açaí Maçã":          "acai maca",
		"":                   "",
		"Cinza Grafite 18mm": "cinza grafite 18mm",
		"Ébano\nNatural":     "ebano natural",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

var catalogEntries = []entity.MaterialEntry{
	{Code: "1", Label: "Branco Liso", Thickness: 15},
	{Code: "2", Label: "Branco Liso", Thickness: 18},
	{Code: "3", Label: "Freijó Natural", Thickness: 18},
	{Code: "4", Label: "Branco TX", Thickness: 6},
	{Code: "5", Label: "Carvalho Hanover", Thickness: 18},
}

func TestFilterThickness(t *testing.T) {
	got := FilterThickness(catalogEntries, 18)
	require.Len(t, got, 3)
	for _, e := range got {
		assert.Equal(t, 18, e.Thickness)
	}
	assert.Empty(t, FilterThickness(catalogEntries, 25))
	assert.Equal(t, catalogEntries, FilterThickness(catalogEntries, 0))
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name      string
		q         Query
		codes     []string
		broadened bool
	}{
		{"accent-insensitive", Query{Term: "FREIJO"}, []string{"3"}, false},
		{"substring", Query{Term: "liso"}, []string{"1", "2"}, false},
		{"thickness", Query{Term: "branco", Thickness: 18}, []string{"2"}, false},
		{"broadens to first word", Query{Term: "Branco Fosco"}, []string{"1", "2", "4"}, true},
		{"broadened keeps thickness", Query{Term: "Branco Fosco", Thickness: 6}, []string{"4"}, true},
		{"short first word", Query{Term: "tx azul"}, nil, false},
		{"single word miss", Query{Term: "nogueira"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Search(catalogEntries, tt.q)
			require.NoError(t, err)
			var codes []string
			for _, e := range res.Matches {
				codes = append(codes, e.Code)
			}
			assert.Equal(t, tt.codes, codes)
			assert.Equal(t, tt.broadened, res.Broadened)
		})
	}
}

func TestSearchCapsSuggestions(t *testing.T) {
	var entries []entity.MaterialEntry
	for i := range 15 {
		entries = append(entries, entity.MaterialEntry{Code: fmt.Sprint(i), Label: fmt.Sprintf("Cinza %d", i)})
	}
	res, err := Search(entries, Query{Term: "cinza grafite"})
	require.NoError(t, err)
	assert.True(t, res.Broadened)
	assert.Len(t, res.Matches, MaxSuggestions)

	res, err = Search(entries, Query{Term: "cinza"})
	require.NoError(t, err)
	assert.Len(t, res.Matches, 15)
}

func TestSearchRejectsBadQuery(t *testing.T) {
	_, err := Search(catalogEntries, Query{Term: "   "})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = Search(catalogEntries, Query{Term: "branco", Thickness: -1})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
