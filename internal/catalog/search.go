// Package catalog searches collected materials and reads their stock
// tables.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/entity"
)

// MaxSuggestions caps the results of a broadened search.
const MaxSuggestions = 10

// Normalize lowercases s, strips combining accents and collapses runs of
// whitespace, so "  Freijó   Natural" matches "freijo natural".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

// FilterThickness keeps the entries of exactly mm millimetres. mm <= 0
// returns entries unchanged.
func FilterThickness(entries []entity.MaterialEntry, mm int) []entity.MaterialEntry {
	if mm <= 0 {
		return entries
	}
	var out []entity.MaterialEntry
	for _, e := range entries {
		if e.Thickness == mm {
			out = append(out, e)
		}
	}
	return out
}

// Query selects materials by name fragment and, optionally, thickness.
type Query struct {
	Term      string
	Thickness int // 0 matches any thickness
}

// Result holds the matches of a search. Broadened is set when nothing
// matched the whole term and the matches come from its first word.
type Result struct {
	Term      string
	Matches   []entity.MaterialEntry
	Broadened bool
}

// Search returns the entries whose normalized label contains the
// normalized term. When none match and the term has more than one word,
// the first word (if longer than two letters) is tried instead and at most
// MaxSuggestions entries are returned.
func Search(entries []entity.MaterialEntry, q Query) (Result, error) {
	term := Normalize(q.Term)
	err := common.NewValidator().
		Field("term", term, common.Required).
		Field("thickness", q.Thickness, common.NonNegative).
		Err()
	if err != nil {
		return Result{}, err
	}

	res := Result{Term: term, Matches: match(entries, term, q.Thickness)}
	if len(res.Matches) > 0 {
		return res, nil
	}
	first := strings.Fields(term)[0]
	if first == term || len([]rune(first)) <= 2 {
		return res, nil
	}
	broad := match(entries, first, q.Thickness)
	if len(broad) > MaxSuggestions {
		broad = broad[:MaxSuggestions]
	}
	res.Matches, res.Broadened = broad, len(broad) > 0
	return res, nil
}

func match(entries []entity.MaterialEntry, term string, mm int) []entity.MaterialEntry {
	var out []entity.MaterialEntry
	for _, e := range FilterThickness(entries, mm) {
		if strings.Contains(Normalize(e.Label), term) {
			out = append(out, e)
		}
	}
	return out
}
