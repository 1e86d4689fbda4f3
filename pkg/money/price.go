package money

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/estimates-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Price is a single taxed amount. Amount is net or gross depending on Type.
type Price struct {
	amount   int64
	currency enums.Currency
	typ      enums.AmountType
	rate     decimal.Decimal
}

// NewPrice builds a Price. Rate is a percentage, e.g. 19 for 19%.
func NewPrice(amount int64, currency enums.Currency, typ enums.AmountType, rate decimal.Decimal) Price {
	return Price{amount: amount, currency: currency, typ: typ, rate: rate}
}

// Amount returns the stored minor-unit amount.
func (p Price) Amount() int64 {
	return p.amount
}

// Currency returns the currency code.
func (p Price) Currency() enums.Currency {
	return p.currency
}

// Type reports whether Amount is net or gross.
func (p Price) Type() enums.AmountType {
	return p.typ
}

// Rate returns the tax rate in percent.
func (p Price) Rate() decimal.Decimal {
	return p.rate
}

// Net returns the amount without tax.
func (p Price) Net() Money {
	return Money{amount: roundMinor(p.rawNet()), currency: p.currency}
}

// Tax returns the tax portion of the price.
func (p Price) Tax() Money {
	if p.typ == enums.AmountTypeGross {
		return Money{amount: p.amount - p.Net().amount, currency: p.currency}
	}
	return Money{amount: roundMinor(taxOf(p.rawNet(), p.rate)), currency: p.currency}
}

// Gross returns net plus tax.
func (p Price) Gross() Money {
	if p.typ == enums.AmountTypeGross {
		return Money{amount: p.amount, currency: p.currency}
	}
	return Money{amount: p.Net().amount + p.Tax().amount, currency: p.currency}
}

// Scale multiplies the amount by factor, rounding once to the minor unit.
func (p Price) Scale(factor decimal.Decimal) Price {
	scaled := decimal.NewFromInt(p.amount).Mul(factor)
	return Price{amount: roundMinor(scaled), currency: p.currency, typ: p.typ, rate: p.rate}
}

// rawNet is the unrounded net amount in minor units.
func (p Price) rawNet() decimal.Decimal {
	amount := decimal.NewFromInt(p.amount)
	if p.typ != enums.AmountTypeGross {
		return amount
	}
	return amount.Mul(hundred).Div(hundred.Add(p.rate))
}

// rawGross is the unrounded gross amount given the price's raw net.
func (p Price) rawGross(net decimal.Decimal) decimal.Decimal {
	if p.typ == enums.AmountTypeGross {
		return decimal.NewFromInt(p.amount)
	}
	return net.Add(taxOf(net, p.rate))
}

func taxOf(net, rate decimal.Decimal) decimal.Decimal {
	return net.Mul(rate).Div(hundred)
}

// roundMinor rounds half away from zero to a whole minor unit.
func roundMinor(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
