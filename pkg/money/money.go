package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/estimates-backend/pkg/enums"
)

// ErrCurrencyMismatch is returned when arithmetic mixes two currencies.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is an amount in the minor unit of its currency.
type Money struct {
	amount   int64
	currency enums.Currency
}

// New builds a Money from a minor-unit amount.
func New(amount int64, currency enums.Currency) Money {
	return Money{amount: amount, currency: currency}
}

// Zero returns an empty amount in the given currency.
func Zero(currency enums.Currency) Money {
	return Money{currency: currency}
}

// Amount returns the minor-unit amount.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() enums.Currency {
	return m.currency
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Subtract returns m - other.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// Negate flips the sign of the amount.
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount == 0
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

// Decimal returns the amount in major units, e.g. 150.00 for 15000 USD cents.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -m.currency.Exponent())
}

// String renders the amount as "150.00 USD".
func (m Money) String() string {
	exp := m.currency.Exponent()
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(exp), m.currency)
}
