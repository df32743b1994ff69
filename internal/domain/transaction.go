package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the canonical direction of a transaction. The zero value means unset.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// Type tokens emitted by statement templates.
const (
	RawTypeCredit = "credit"
	RawTypeDebit  = "debit"
)

// RawTransaction is a record as a template read it off the page. It is never persisted.
type RawTransaction struct {
	Date        *time.Time
	Description string
	Amount      string
	Type        string
	Currency    string
	Balance     string
}

// NormalizedTransaction is a canonical record that has not been persisted yet.
type NormalizedTransaction struct {
	Date        *time.Time
	Balance     *decimal.Decimal
	Description string
	Currency    string
	Type        TransactionType
	Amount      decimal.Decimal
}

// Transaction is a persisted, immutable statement line.
type Transaction struct {
	CreatedAt   time.Time
	Date        *time.Time
	Balance     *decimal.Decimal
	ID          string
	DocumentID  string
	Description string
	Currency    string
	Type        TransactionType
	Amount      decimal.Decimal
}

var amountReplacer = strings.NewReplacer("$", "", ",", "", " ", "", "\t", "", "\u00a0", "")

// ParseAmount parses a statement amount such as "$1,234.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := amountReplacer.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
