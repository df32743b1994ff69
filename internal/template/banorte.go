package template

import (
	"regexp"

	"github.com/iho/banky/internal/domain"
)

// 05/01/2024 COMPRA WALMART 450.00 8,550.00
var banorteRow = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(.{1,50}?)\s+([\d,]+\.\d{2})\s+([\d,]+\.\d{2})`)

type banorte struct{}

func (banorte) Brand() domain.Brand { return domain.BrandBanorte }

// ParseTransactions reads amount and balance columns; the direction comes from the balance.
func (banorte) ParseTransactions(pages []string) []domain.RawTransaction {
	var rows []row

	for _, line := range lines(pages) {
		m := banorteRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rows = append(rows, newRow(m[1], m[2], m[3], m[4]))
	}

	return resolveTypes(rows)
}
