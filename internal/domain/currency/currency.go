package currency

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Code represents a currency code (ISO 4217)
type Code string

const (
	LKR Code = "LKR" // Sri Lankan Rupee (base)
	USD Code = "USD" // US Dollar
	EUR Code = "EUR" // Euro
	GBP Code = "GBP" // British Pound
	JPY Code = "JPY" // Japanese Yen
	INR Code = "INR" // Indian Rupee
	AUD Code = "AUD" // Australian Dollar
)

// BaseCode is the fixed reference currency the backend stores and
// filters all prices in. Shared URLs carry prices in this currency.
const BaseCode = LKR

// String returns the code as a string
func (c Code) String() string {
	return string(c)
}

// Known reports whether the code is one the storefront can display
func (c Code) Known() bool {
	switch c {
	case LKR, USD, EUR, GBP, JPY, INR, AUD:
		return true
	}
	return false
}

// RateTable maps a currency code to the amount of base currency one
// unit of that currency is worth. The base currency always maps to 1.
type RateTable map[Code]decimal.Decimal

// DefaultRates returns the built-in rate table used when the exchange
// provider has never been reached. Values are intentionally coarse;
// the rate service replaces them with live rates on first refresh.
func DefaultRates() RateTable {
	return RateTable{
		LKR: decimal.NewFromInt(1),
		USD: decimal.NewFromInt(300),
		EUR: decimal.NewFromInt(325),
		GBP: decimal.NewFromInt(380),
		JPY: decimal.NewFromInt(2),
		INR: decimal.NewFromFloat(3.6),
		AUD: decimal.NewFromInt(195),
	}
}

// Rate returns the base-currency value of one unit of the given code
func (t RateTable) Rate(code Code) (decimal.Decimal, error) {
	rate, ok := t[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("no rate for %s: %w", code, shared.ErrUnknownCurrency)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive rate %s for %s: %w", rate, code, shared.ErrUnknownCurrency)
	}
	return rate, nil
}

// Convert converts an amount between two currencies using the given
// rate table. Converting a currency to itself is an identity operation
// and never consults the table.
func Convert(amount decimal.Decimal, from, to Code, rates RateTable) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	fromRate, err := rates.Rate(from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := rates.Rate(to)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Mul(fromRate).Div(toRate), nil
}
