package money

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/estimates-backend/pkg/enums"
)

func netPrice(amount int64, rate int64) Price {
	return NewPrice(amount, enums.CurrencyUSD, enums.AmountTypeNet, decimal.NewFromInt(rate))
}

func TestPriceNetPlusTaxEqualsGross(t *testing.T) {
	rates := []string{"0", "7", "19", "7.7", "20", "2.5"}
	amounts := []int64{1, 3, 99, 1001, 12345, 999999}
	for _, r := range rates {
		for _, a := range amounts {
			p := NewPrice(a, enums.CurrencyEUR, enums.AmountTypeNet, decimal.RequireFromString(r))
			sum, err := p.Net().Add(p.Tax())
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			if !sum.Equal(p.Gross()) {
				t.Fatalf("rate %s amount %d: net+tax %s != gross %s", r, a, sum, p.Gross())
			}
		}
	}
}

func TestPriceRoundsHalfUp(t *testing.T) {
	// 50 * 7% = 3.5 minor units
	p := netPrice(50, 7)
	if p.Tax().Amount() != 4 {
		t.Fatalf("expected tax 4, got %d", p.Tax().Amount())
	}
}

func TestGrossPriceDerivesNet(t *testing.T) {
	p := NewPrice(11900, enums.CurrencyEUR, enums.AmountTypeGross, decimal.NewFromInt(19))
	if p.Net().Amount() != 10000 {
		t.Fatalf("expected net 10000, got %d", p.Net().Amount())
	}
	if p.Tax().Amount() != 1900 {
		t.Fatalf("expected tax 1900, got %d", p.Tax().Amount())
	}
	if p.Gross().Amount() != 11900 {
		t.Fatalf("expected gross 11900, got %d", p.Gross().Amount())
	}
}

func TestPriceScaleRoundsOnce(t *testing.T) {
	p := netPrice(333, 19).Scale(decimal.RequireFromString("1.5"))
	if p.Amount() != 500 {
		t.Fatalf("expected 499.5 to round to 500, got %d", p.Amount())
	}
	if p.Rate().String() != "19" || p.Type() != enums.AmountTypeNet {
		t.Fatal("scale must keep rate and type")
	}
}

func TestPricesScenarioTwoRates(t *testing.T) {
	ps := Prices{}.Add(netPrice(10000, 19)).Add(netPrice(5000, 7))

	if got := ps.Net().Get(enums.CurrencyUSD).Amount(); got != 15000 {
		t.Fatalf("expected net 15000, got %d", got)
	}
	if got := ps.Gross().Get(enums.CurrencyUSD).Amount(); got != 17250 {
		t.Fatalf("expected gross 17250, got %d", got)
	}
	taxes := ps.TaxesByRate()
	if got := taxes["19"].Get(enums.CurrencyUSD).Amount(); got != 1900 {
		t.Fatalf("expected 19%% tax 1900, got %d", got)
	}
	if got := taxes["7"].Get(enums.CurrencyUSD).Amount(); got != 350 {
		t.Fatalf("expected 7%% tax 350, got %d", got)
	}
	if rates := ps.Sum().Rates(); len(rates) != 2 || rates[0] != "19" || rates[1] != "7" {
		t.Fatalf("unexpected rate order %v", rates)
	}
}

func TestPricesGroupBeforeRound(t *testing.T) {
	// Each 0.05 at 10% carries 0.5 minor units of tax. Rounded per price
	// that would be 3, rounded per group it is 2 (1.5 -> 2).
	ps := Prices{netPrice(5, 10), netPrice(5, 10), netPrice(5, 10)}
	sum := ps.Sum()
	totals := sum["10"][enums.CurrencyUSD]
	if totals.Tax.Amount() != 2 {
		t.Fatalf("expected group tax 2, got %d", totals.Tax.Amount())
	}

	var direct int64
	for _, p := range ps {
		direct += p.Net().Amount()
	}
	if got := ps.Net().Get(enums.CurrencyUSD).Amount(); got != direct {
		t.Fatalf("grouped net %d != direct net %d", got, direct)
	}
}

func TestPricesGrossPriceSumsToItsAmount(t *testing.T) {
	p := NewPrice(105, enums.CurrencyEUR, enums.AmountTypeGross, decimal.NewFromInt(20))
	totals := Prices{p}.Sum()["20"][enums.CurrencyEUR]

	if totals.Gross.Amount() != 105 || totals.Gross.Amount() != p.Gross().Amount() {
		t.Fatalf("expected gross 105, got %d", totals.Gross.Amount())
	}
	if totals.Net.Amount() != 88 || totals.Net.Amount() != p.Net().Amount() {
		t.Fatalf("expected net 88, got %d", totals.Net.Amount())
	}
	if totals.Tax.Amount() != 17 || totals.Tax.Amount() != p.Tax().Amount() {
		t.Fatalf("expected tax 17, got %d", totals.Tax.Amount())
	}
}

func TestPricesGrossGroupRoundsGrossOnce(t *testing.T) {
	var ps Prices
	var gross int64
	for _, a := range []int64{105, 99, 1, 12345} {
		ps = ps.Add(NewPrice(a, enums.CurrencyEUR, enums.AmountTypeGross, decimal.RequireFromString("7.7")))
		gross += a
	}
	totals := ps.Sum()["7.7"][enums.CurrencyEUR]
	if totals.Gross.Amount() != gross {
		t.Fatalf("expected gross %d, got %d", gross, totals.Gross.Amount())
	}
	if totals.Net.Amount()+totals.Tax.Amount() != totals.Gross.Amount() {
		t.Fatalf("net %d + tax %d != gross %d", totals.Net.Amount(), totals.Tax.Amount(), totals.Gross.Amount())
	}
}

func TestPricesRateKeyNormalizes(t *testing.T) {
	ps := Prices{
		NewPrice(100, enums.CurrencyUSD, enums.AmountTypeNet, decimal.RequireFromString("19.00")),
		netPrice(100, 19),
	}
	if sum := ps.Sum(); len(sum) != 1 {
		t.Fatalf("expected a single rate group, got %d", len(sum))
	}
}

func TestPricesMultipleCurrencies(t *testing.T) {
	ps := Prices{
		netPrice(1000, 19),
		NewPrice(2000, enums.CurrencyEUR, enums.AmountTypeNet, decimal.NewFromInt(19)),
	}
	net := ps.Net()
	if net.Get(enums.CurrencyUSD).Amount() != 1000 || net.Get(enums.CurrencyEUR).Amount() != 2000 {
		t.Fatalf("unexpected net %v", net)
	}
	if len(ps.Sum()["19"]) != 2 {
		t.Fatal("expected two currency groups under 19%")
	}
}

func TestPricesEmpty(t *testing.T) {
	var ps Prices
	if len(ps.Sum()) != 0 {
		t.Fatal("expected empty sum")
	}
	if !ps.Net().IsZero() || !ps.Gross().IsZero() {
		t.Fatal("expected zero monies")
	}
}

func TestPricesConcatDoesNotAlias(t *testing.T) {
	a := Prices{netPrice(1, 0)}
	b := a.Concat(Prices{netPrice(2, 0)})
	if len(a) != 1 || len(b) != 2 {
		t.Fatalf("unexpected lengths %d %d", len(a), len(b))
	}
}
