package template

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"

	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/textnorm"
)

var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2-Jan-2006",
	"2006-1-2",
}

var monthWord = regexp.MustCompile(`\p{L}+\.?`)

// ParseDate parses a statement date, trying each known layout in order. Spanish month
// abbreviations ("15-ENE-2024") are accepted. Returns nil when no layout fits.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	s = monthWord.ReplaceAllStringFunc(s, func(word string) string {
		if m, ok := textnorm.MonthNumber(word); ok {
			return m.String()[:3]
		}
		return word
	})

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseAmount parses a statement amount, returning zero when it cannot be read.
func ParseAmount(s string) decimal.Decimal {
	d, err := domain.ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// lines yields every non-blank, trimmed line of every page in order.
func lines(pages []string) []string {
	var out []string
	for _, p := range pages {
		for _, l := range strings.Split(p, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, l)
			}
		}
	}
	return out
}

// row is a parsed line whose type may still be undecided.
type row struct {
	raw     domain.RawTransaction
	amount  decimal.Decimal
	balance *decimal.Decimal
	typed   bool
}

func newRow(date, description, amount, balance string) row {
	r := row{
		raw: domain.RawTransaction{
			Date:        ParseDate(date),
			Description: strings.TrimSpace(description),
			Amount:      amount,
			Balance:     balance,
		},
		amount: ParseAmount(amount),
	}
	if balance != "" {
		b := ParseAmount(balance)
		r.balance = &b
	}
	return r
}

// resolveTypes fills in the type of rows whose layout does not say whether money came in or
// went out. The running balance decides first; description keywords decide when there is no
// previous balance; anything left is a debit.
func resolveTypes(rows []row) []domain.RawTransaction {
	out := make([]domain.RawTransaction, 0, len(rows))
	var prev *decimal.Decimal

	for _, r := range rows {
		if !r.typed {
			r.raw.Type = domain.RawTypeDebit
			switch {
			case prev != nil && r.balance != nil && r.balance.GreaterThan(*prev):
				r.raw.Type = domain.RawTypeCredit
			case prev != nil && r.balance != nil && r.balance.LessThan(*prev):
				r.raw.Type = domain.RawTypeDebit
			case looksLikeCredit(r.raw.Description):
				r.raw.Type = domain.RawTypeCredit
			}
		}
		if r.balance != nil {
			prev = r.balance
		}
		out = append(out, r.raw)
	}
	return out
}

var creditKeywords = []string{
	"deposito",
	"abono",
	"nomina",
	"spei recibido",
	"transferencia recibida",
	"traspaso recibido",
	"intereses a favor",
	"devolucion",
	"reembolso",
}

var creditHints = struct {
	sync.Mutex
	m *ahocorasick.Matcher
}{m: ahocorasick.NewStringMatcher(creditKeywords)}

// looksLikeCredit reports whether a description names an incoming movement.
func looksLikeCredit(description string) bool {
	folded := []byte(textnorm.Fold(description))

	creditHints.Lock()
	defer creditHints.Unlock()
	return len(creditHints.m.Match(folded)) > 0
}
