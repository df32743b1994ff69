package template

import (
	"regexp"

	"github.com/iho/banky/internal/domain"
)

// 05/01/2024 05/01/2024 PAGO TARJETA 1,500.00 D [12,000.00]
// Operation date, value date, description, amount, C/D flag and an optional balance.
var santanderRow = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(\d{2}/\d{2}/\d{4})\s+(.+?)\s+([\d,]+\.\d{2})\s*([CD])\b(?:\s+([\d,]+\.\d{2}))?`)

type santander struct{}

func (santander) Brand() domain.Brand { return domain.BrandSantander }

func (santander) ParseTransactions(pages []string) []domain.RawTransaction {
	var out []domain.RawTransaction

	for _, line := range lines(pages) {
		m := santanderRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		r := newRow(m[1], m[3], m[4], m[6])
		r.raw.Type = domain.RawTypeDebit
		if m[5] == "C" {
			r.raw.Type = domain.RawTypeCredit
		}
		out = append(out, r.raw)
	}

	return out
}
