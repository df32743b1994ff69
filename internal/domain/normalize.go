package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "MXN"

// NormalizeOptions carries process-wide defaults into Normalize.
type NormalizeOptions struct {
	DefaultCurrency string
}

// Normalize maps raw template output onto the canonical schema. Records with an empty
// description, an amount that cannot be coerced, or an amount of exactly zero are dropped.
// A missing currency becomes the default; a record with an unrecognized currency code is
// dropped rather than relabelled. Input order is preserved.
func Normalize(raw []RawTransaction, opts NormalizeOptions) []NormalizedTransaction {
	defaultCurrency := strings.ToUpper(strings.TrimSpace(opts.DefaultCurrency))
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}

	out := make([]NormalizedTransaction, 0, len(raw))
	for _, r := range raw {
		description := strings.TrimSpace(r.Description)
		if description == "" {
			continue
		}

		amount, err := ParseAmount(r.Amount)
		if err != nil {
			continue
		}
		amount = amount.Round(2)
		if amount.IsZero() {
			continue
		}

		currency := strings.ToUpper(strings.TrimSpace(r.Currency))
		if currency == "" {
			currency = defaultCurrency
		} else if ValidateCurrency(currency) != nil {
			continue
		}

		out = append(out, NormalizedTransaction{
			Date:        r.Date,
			Description: description,
			Amount:      amount,
			Currency:    currency,
			Type:        MapTransactionType(r.Type),
			Balance:     normalizeBalance(r.Balance),
		})
	}

	return out
}

// MapTransactionType maps a template type token to a TransactionType.
func MapTransactionType(token string) TransactionType {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case RawTypeCredit:
		return TransactionIncome
	case RawTypeDebit:
		return TransactionExpense
	default:
		return ""
	}
}

func normalizeBalance(s string) *decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	b, err := ParseAmount(s)
	if err != nil {
		return nil
	}
	b = b.Round(2)
	return &b
}
