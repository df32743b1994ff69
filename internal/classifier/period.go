package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/iho/banky/internal/textnorm"
)

type periodGrammar struct {
	name  string
	re    *regexp.Regexp
	build func(m []string) (start, end time.Time, ok bool)
}

func periodGrammars() []periodGrammar {
	return []periodGrammar{
		{
			// "del 01 de enero al 31 de enero de 2024"
			name: "long_form",
			re:   regexp.MustCompile(`del\s+(\d{1,2})\s+de\s+([a-z]+)\s+al\s+(\d{1,2})\s+de\s+([a-z]+)\s+de\s+(\d{4})`),
			build: func(m []string) (time.Time, time.Time, bool) {
				year, ok := atoi(m[5])
				if !ok {
					return time.Time{}, time.Time{}, false
				}
				start, ok1 := namedDate(year, m[2], m[1])
				end, ok2 := namedDate(year, m[4], m[3])
				if !ok1 || !ok2 {
					return time.Time{}, time.Time{}, false
				}
				// "del 15 de diciembre al 14 de enero de 2024" starts in the previous year.
				if start.After(end) {
					start = start.AddDate(-1, 0, 0)
				}
				return start, end, true
			},
		},
		{
			// "periodo: 01/01/2024 - 31/01/2024"
			name: "slash_range",
			re:   regexp.MustCompile(`periodo\s*:?\s*(\d{1,2})/(\d{1,2})/(\d{4})\s*-\s*(\d{1,2})/(\d{1,2})/(\d{4})`),
			build: func(m []string) (time.Time, time.Time, bool) {
				start, ok1 := numericDate(m[3], m[2], m[1])
				end, ok2 := numericDate(m[6], m[5], m[4])
				return start, end, ok1 && ok2
			},
		},
		{
			// "01-ene-2024 al 31-ene-2024"
			name: "abbreviated_range",
			re:   regexp.MustCompile(`(\d{1,2})-([a-z]{3})-(\d{4})\s+al\s+(\d{1,2})-([a-z]{3})-(\d{4})`),
			build: func(m []string) (time.Time, time.Time, bool) {
				y1, ok1 := atoi(m[3])
				y2, ok2 := atoi(m[6])
				if !ok1 || !ok2 {
					return time.Time{}, time.Time{}, false
				}
				start, ok1 := namedDate(y1, m[2], m[1])
				end, ok2 := namedDate(y2, m[5], m[4])
				return start, end, ok1 && ok2
			},
		},
		{
			// "2024-01-01 a 2024-01-31"
			name: "iso_range",
			re:   regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})\s+a\s+(\d{4})-(\d{1,2})-(\d{1,2})`),
			build: func(m []string) (time.Time, time.Time, bool) {
				start, ok1 := numericDate(m[1], m[2], m[3])
				end, ok2 := numericDate(m[4], m[5], m[6])
				return start, end, ok1 && ok2
			},
		},
	}
}

// DetectPeriod returns the statement period from the first grammar that both matches and
// yields valid dates. Both results are nil when nothing matches.
func (c *Classifier) DetectPeriod(pages []string) (start, end *time.Time) {
	text := textnorm.Fold(strings.Join(textnorm.Leading(pages, PeriodPages), "\n"))
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	for _, g := range c.grammars {
		m := g.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		s, e, ok := g.build(m)
		if !ok {
			continue
		}
		return &s, &e
	}
	return nil, nil
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func numericDate(year, month, day string) (time.Time, bool) {
	y, ok1 := atoi(year)
	m, ok2 := atoi(month)
	d, ok3 := atoi(day)
	if !ok1 || !ok2 || !ok3 {
		return time.Time{}, false
	}
	return textnorm.CivilDate(y, time.Month(m), d)
}

func namedDate(year int, month, day string) (time.Time, bool) {
	m, ok := textnorm.MonthNumber(month)
	if !ok {
		return time.Time{}, false
	}
	d, ok := atoi(day)
	if !ok {
		return time.Time{}, false
	}
	return textnorm.CivilDate(year, m, d)
}
