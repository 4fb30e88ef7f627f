package model

import "github.com/shopspring/decimal"

// LineItem is one billed row. The amount is always derived from quantity
// and rate and is never stored.
type LineItem struct {
	Type        string          `json:"type,omitempty" yaml:"type,omitempty"`
	Description string          `json:"description" yaml:"description"`
	Quantity    decimal.Decimal `json:"quantity" yaml:"quantity"`
	Rate        decimal.Decimal `json:"rate" yaml:"rate"`
}

// NewLineItem builds an item from float inputs, as typed into a form.
func NewLineItem(typ, description string, quantity, rate float64) LineItem {
	return LineItem{
		Type:        typ,
		Description: description,
		Quantity:    decimal.NewFromFloat(quantity),
		Rate:        decimal.NewFromFloat(rate),
	}
}

// Amount is quantity times rate, rounded half away from zero to cents.
func (it LineItem) Amount() decimal.Decimal {
	return it.Quantity.Mul(it.Rate).Round(2)
}

// WithQuantity returns a copy of it with a new quantity.
func (it LineItem) WithQuantity(q decimal.Decimal) LineItem {
	it.Quantity = q
	return it
}

// WithRate returns a copy of it with a new rate.
func (it LineItem) WithRate(r decimal.Decimal) LineItem {
	it.Rate = r
	return it
}
