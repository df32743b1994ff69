// Package textnorm holds text folding and calendar helpers shared by the classifier and the
// statement templates.
package textnorm

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips diacritics ("Período" -> "periodo").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Spanish month names and abbreviations, plus the English abbreviations that differ.
var months = map[string]time.Month{
	"enero": time.January, "ene": time.January, "jan": time.January,
	"febrero": time.February, "feb": time.February,
	"marzo": time.March, "mar": time.March,
	"abril": time.April, "abr": time.April, "apr": time.April,
	"mayo": time.May, "may": time.May,
	"junio": time.June, "jun": time.June,
	"julio": time.July, "jul": time.July,
	"agosto": time.August, "ago": time.August, "aug": time.August,
	"septiembre": time.September, "setiembre": time.September, "sep": time.September, "set": time.September,
	"octubre": time.October, "oct": time.October,
	"noviembre": time.November, "nov": time.November,
	"diciembre": time.December, "dic": time.December, "dec": time.December,
}

// MonthNumber resolves a month name or abbreviation, case- and accent-insensitively.
func MonthNumber(name string) (time.Month, bool) {
	m, ok := months[strings.TrimSuffix(Fold(strings.TrimSpace(name)), ".")]
	return m, ok
}

// CivilDate builds a UTC midnight date and rejects impossible dates instead of normalizing them.
func CivilDate(year int, month time.Month, day int) (time.Time, bool) {
	if year < 1900 || year > 2200 || month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// Leading returns at most n pages from the front of pages.
func Leading(pages []string, n int) []string {
	if len(pages) <= n {
		return pages
	}
	return pages[:n]
}
