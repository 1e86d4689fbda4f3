package money

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/estimates-backend/pkg/enums"
)

// Totals is the net, gross and tax of one (rate, currency) group.
type Totals struct {
	Net   Money
	Gross Money
	Tax   Money
}

// Sum maps a canonical rate key (see RateKey) to per-currency totals.
type Sum map[string]map[enums.Currency]Totals

// RateKey renders a rate without trailing zeros so 19 and 19.00 share a group.
func RateKey(rate decimal.Decimal) string {
	return rate.String()
}

// Rates returns the rate keys ordered from highest to lowest rate.
func (s Sum) Rates() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return decimal.RequireFromString(keys[i]).GreaterThan(decimal.RequireFromString(keys[j]))
	})
	return keys
}

// Prices is an ordered collection of Price values.
type Prices []Price

// Add returns a new collection with price appended.
func (ps Prices) Add(price Price) Prices {
	out := make(Prices, 0, len(ps)+1)
	out = append(out, ps...)
	return append(out, price)
}

// Concat returns a new collection holding ps followed by other.
func (ps Prices) Concat(other Prices) Prices {
	out := make(Prices, 0, len(ps)+len(other))
	out = append(out, ps...)
	return append(out, other...)
}

type groupKey struct {
	rate     string
	currency enums.Currency
}

// Sum groups by (rate, currency), adds the unrounded net and gross amounts
// of each group and rounds each once. Tax is gross minus net so that a
// single gross price sums to exactly its own amount.
func (ps Prices) Sum() Sum {
	nets := map[groupKey]decimal.Decimal{}
	grosses := map[groupKey]decimal.Decimal{}
	for _, p := range ps {
		key := groupKey{rate: RateKey(p.rate), currency: p.currency}
		net := p.rawNet()
		nets[key] = nets[key].Add(net)
		grosses[key] = grosses[key].Add(p.rawGross(net))
	}

	out := Sum{}
	for key, net := range nets {
		netMinor := roundMinor(net)
		grossMinor := roundMinor(grosses[key])
		if out[key.rate] == nil {
			out[key.rate] = map[enums.Currency]Totals{}
		}
		out[key.rate][key.currency] = Totals{
			Net:   New(netMinor, key.currency),
			Tax:   New(grossMinor-netMinor, key.currency),
			Gross: New(grossMinor, key.currency),
		}
	}
	return out
}

// Net flattens Sum into per-currency net amounts.
func (ps Prices) Net() Monies {
	return ps.flatten(func(t Totals) Money { return t.Net })
}

// Gross flattens Sum into per-currency gross amounts.
func (ps Prices) Gross() Monies {
	return ps.flatten(func(t Totals) Money { return t.Gross })
}

// Tax flattens Sum into per-currency tax amounts across every rate.
func (ps Prices) Tax() Monies {
	return ps.flatten(func(t Totals) Money { return t.Tax })
}

// TaxesByRate returns the tax amounts of every rate group.
func (ps Prices) TaxesByRate() map[string]Monies {
	out := map[string]Monies{}
	for rate, byCurrency := range ps.Sum() {
		ms := Monies{}
		for _, t := range byCurrency {
			ms = ms.AddMoney(t.Tax)
		}
		out[rate] = ms
	}
	return out
}

func (ps Prices) flatten(pick func(Totals) Money) Monies {
	out := Monies{}
	for _, byCurrency := range ps.Sum() {
		for _, t := range byCurrency {
			out = out.AddMoney(pick(t))
		}
	}
	return out
}
