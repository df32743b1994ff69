// Package template turns statement page text into raw transactions, one variant per bank.
package template

import (
	"fmt"

	"github.com/iho/banky/internal/domain"
)

// Parsing methods reported in ParseResult.
const (
	MethodTemplate = "template"
	MethodNone     = "none"
)

// Template parses one bank's statement layout. Implementations are pure and never panic on
// malformed input; lines that do not match a grammar are skipped.
type Template interface {
	Brand() domain.Brand
	ParseTransactions(pages []string) []domain.RawTransaction
}

// New returns the template for brand. Brands without a dedicated layout get a no-op template.
func New(brand domain.Brand) Template {
	switch brand {
	case domain.BrandBBVA:
		return bbva{}
	case domain.BrandSantander:
		return santander{}
	case domain.BrandBanorte:
		return banorte{}
	default:
		return noop{brand: brand}
	}
}

// ParseResult is the output of a registry parse together with its metadata.
type ParseResult struct {
	Brand        domain.Brand
	Method       string
	Transactions []domain.RawTransaction
	// Recovered holds the panic value when a template crashed; Transactions is empty then.
	Recovered string
}

// Total is the number of raw transactions found.
func (r ParseResult) Total() int {
	return len(r.Transactions)
}

// Registry maps every brand to its template.
type Registry struct {
	templates map[domain.Brand]Template
}

// NewRegistry builds a registry covering every known brand plus BrandUnknown.
func NewRegistry() *Registry {
	templates := make(map[domain.Brand]Template)
	for _, b := range append(domain.Brands(), domain.BrandUnknown) {
		templates[b] = New(b)
	}
	return &Registry{templates: templates}
}

// For returns the template registered for brand, falling back to a no-op template.
func (r *Registry) For(brand domain.Brand) Template {
	if t, ok := r.templates[brand]; ok {
		return t
	}
	return noop{brand: brand}
}

// Supported lists the brands that have a dedicated layout, in enumeration order.
func (r *Registry) Supported() []domain.Brand {
	var out []domain.Brand
	for _, b := range domain.Brands() {
		if _, isNoop := r.For(b).(noop); !isNoop {
			out = append(out, b)
		}
	}
	return out
}

// Parse runs brand's template over pages. A panicking template yields an empty result.
func (r *Registry) Parse(brand domain.Brand, pages []string) (res ParseResult) {
	t := r.For(brand)
	res = ParseResult{Brand: brand, Method: MethodTemplate}
	if _, isNoop := t.(noop); isNoop {
		res.Method = MethodNone
	}

	defer func() {
		if rec := recover(); rec != nil {
			res.Transactions = nil
			res.Recovered = fmt.Sprint(rec)
		}
	}()

	res.Transactions = t.ParseTransactions(pages)
	return res
}

type noop struct {
	brand domain.Brand
}

func (n noop) Brand() domain.Brand { return n.brand }

func (noop) ParseTransactions([]string) []domain.RawTransaction { return nil }
