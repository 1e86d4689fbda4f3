package money

import (
	"sort"

	"github.com/angelmondragon/estimates-backend/pkg/enums"
)

// Monies holds at most one Money per currency, keyed by that currency.
type Monies map[enums.Currency]Money

// NewMonies collects the given values, summing those that share a currency.
func NewMonies(values ...Money) Monies {
	out := Monies{}
	for _, v := range values {
		out = out.AddMoney(v)
	}
	return out
}

// Get returns the amount for currency, or zero when absent.
func (ms Monies) Get(currency enums.Currency) Money {
	if m, ok := ms[currency]; ok {
		return m
	}
	return Zero(currency)
}

// Currencies lists the keys in sorted order.
func (ms Monies) Currencies() []enums.Currency {
	keys := make([]enums.Currency, 0, len(ms))
	for c := range ms {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Add returns the per-currency sum over the union of both key sets.
func (ms Monies) Add(other Monies) Monies {
	out := ms.clone()
	for _, m := range other {
		out[m.currency] = Money{amount: out.Get(m.currency).amount + m.amount, currency: m.currency}
	}
	return out
}

// Subtract returns the per-currency difference over the union of both key sets.
func (ms Monies) Subtract(other Monies) Monies {
	return ms.Add(other.Negate())
}

// AddMoney adds a single amount to the matching currency entry.
func (ms Monies) AddMoney(m Money) Monies {
	return ms.Add(Monies{m.currency: m})
}

// SubtractMoney subtracts a single amount from the matching currency entry.
func (ms Monies) SubtractMoney(m Money) Monies {
	return ms.Add(Monies{m.currency: m.Negate()})
}

// Negate flips the sign of every entry.
func (ms Monies) Negate() Monies {
	out := make(Monies, len(ms))
	for c, m := range ms {
		out[c] = m.Negate()
	}
	return out
}

// IsZero reports whether every entry is zero. An empty set is zero.
func (ms Monies) IsZero() bool {
	for _, m := range ms {
		if !m.IsZero() {
			return false
		}
	}
	return true
}

func (ms Monies) clone() Monies {
	out := make(Monies, len(ms))
	for c, m := range ms {
		out[c] = m
	}
	return out
}
