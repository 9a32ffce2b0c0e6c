// Package sorting orders material entries the way people read them:
// digit runs compare by value, so "item2" comes before "item10".
package sorting

import (
	"slices"
	"strings"

	"github.com/maruel/natural"

	"github.com/joseph-ayodele/material-list/internal/entity"
)

// Entries returns a naturally ordered copy of entries, by label then code.
// Equal entries keep their input order.
func Entries(entries []entity.MaterialEntry) []entity.MaterialEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, Compare)
	return out
}

// Compare is the natural order on (label, code).
func Compare(a, b entity.MaterialEntry) int {
	if c := compareNatural(a.Label, b.Label); c != 0 {
		return c
	}
	return compareNatural(a.Code, b.Code)
}

// natural.Less parses digit runs as uint64; 19 digits always fit.
const maxUint64Digits = 19

func compareNatural(a, b string) int {
	if a == b {
		return 0
	}
	if longestDigitRun(a) > maxUint64Digits || longestDigitRun(b) > maxUint64Digits {
		return compareChunks(a, b)
	}
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return 0
}

// compareChunks orders digit runs of any length by value: fewer significant
// digits first, then digit by digit. Other runs compare bytewise.
func compareChunks(a, b string) int {
	for a != "" && b != "" {
		ca, restA := nextChunk(a)
		cb, restB := nextChunk(b)
		if isDigit(ca[0]) && isDigit(cb[0]) {
			na, nb := strings.TrimLeft(ca, "0"), strings.TrimLeft(cb, "0")
			if c := len(na) - len(nb); c != 0 {
				return sign(c)
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
		} else if c := strings.Compare(ca, cb); c != 0 {
			return c
		}
		a, b = restA, restB
	}
	if c := len(a) - len(b); c != 0 {
		return sign(c)
	}
	return 0
}

// nextChunk splits off the leading run of digits or non-digits.
func nextChunk(s string) (string, string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

func longestDigitRun(s string) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
