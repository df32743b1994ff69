package template

import (
	"regexp"

	"github.com/iho/banky/internal/domain"
)

var (
	// 05/01/2024 OXXO REFORMA $150.00 $9,850.00
	// Cargo and abono columns are optional; the last amount is the balance.
	bbvaSlashRow = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(\$[\d,]+\.\d{2})?\s*(\$[\d,]+\.\d{2})?\s+(\$[\d,]+\.\d{2})`)
	// 05-ENE-2024 OXXO REFORMA 150.00 9,850.00
	bbvaDashRow = regexp.MustCompile(`^(\d{2}-[A-Za-z]{3}-\d{4})\s+(.+?)\s+([\d,]+\.\d{2})\s+([\d,]+\.\d{2})`)
)

type bbva struct{}

func (bbva) Brand() domain.Brand { return domain.BrandBBVA }

func (bbva) ParseTransactions(pages []string) []domain.RawTransaction {
	var rows []row

	for _, line := range lines(pages) {
		if m := bbvaSlashRow.FindStringSubmatch(line); m != nil {
			charge, deposit := m[3], m[4]
			switch {
			case charge != "" && deposit != "":
				// Both columns filled: whichever is non-zero wins, charge first.
				r := newRow(m[1], m[2], charge, m[5])
				r.raw.Type, r.typed = domain.RawTypeDebit, true
				if r.amount.IsZero() {
					r = newRow(m[1], m[2], deposit, m[5])
					r.raw.Type, r.typed = domain.RawTypeCredit, true
				}
				rows = append(rows, r)
			case charge != "":
				// A single amount does not say which column it came from.
				rows = append(rows, newRow(m[1], m[2], charge, m[5]))
			case deposit != "":
				rows = append(rows, newRow(m[1], m[2], deposit, m[5]))
			}
			continue
		}

		if m := bbvaDashRow.FindStringSubmatch(line); m != nil {
			rows = append(rows, newRow(m[1], m[2], m[3], m[4]))
		}
	}

	return resolveTypes(rows)
}
