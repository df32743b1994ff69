package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors
var (
	ErrInvalidCurrency = errors.New("invalid currency code")
)

// Validation reports
const (
	ReportValidationPassed = "validation passed"
	ReportNoTransactions   = "no transactions found"
)

// Pagination limits
const (
	MaxPageSize     = 1000
	DefaultPageSize = 50
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
	"COP": true, "ARS": true, "CLP": true, "PEN": true,
	"UYU": true, "GTQ": true, "CRC": true, "DOP": true,
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateBatch checks a normalized batch before it is persisted.
// The only rule is that the batch is not empty; the period bounds are accepted for
// future rules and currently do not affect the outcome.
func ValidateBatch(batch []NormalizedTransaction, periodStart, periodEnd *time.Time) (bool, string) {
	if len(batch) == 0 {
		return false, ReportNoTransactions
	}
	return true, ReportValidationPassed
}

// PeriodWarnings lists dated records that fall outside the detected statement period.
// Warnings are informational and never fail a batch.
func PeriodWarnings(batch []NormalizedTransaction, periodStart, periodEnd *time.Time) []string {
	if periodStart == nil || periodEnd == nil {
		return nil
	}

	var warnings []string
	for i, tx := range batch {
		if tx.Date == nil {
			continue
		}
		if tx.Date.Before(*periodStart) || tx.Date.After(*periodEnd) {
			warnings = append(warnings, fmt.Sprintf("transaction %d dated %s is outside period %s..%s",
				i, tx.Date.Format(time.DateOnly), periodStart.Format(time.DateOnly), periodEnd.Format(time.DateOnly)))
		}
	}
	return warnings
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
