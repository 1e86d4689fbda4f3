package money

import (
	"errors"
	"testing"

	"github.com/angelmondragon/estimates-backend/pkg/enums"
)

func TestMoneyAddSubtractRoundTrip(t *testing.T) {
	cases := []struct{ a, b int64 }{
		{0, 0},
		{15000, 350},
		{-1999, 42},
		{1, -1},
	}
	for _, tc := range cases {
		a := New(tc.a, enums.CurrencyUSD)
		b := New(tc.b, enums.CurrencyUSD)
		sum, err := a.Add(b)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		back, err := sum.Subtract(b)
		if err != nil {
			t.Fatalf("subtract: %v", err)
		}
		if !back.Equal(a) {
			t.Fatalf("expected %s, got %s", a, back)
		}
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	usd := New(100, enums.CurrencyUSD)
	eur := New(100, enums.CurrencyEUR)

	if _, err := usd.Add(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch from Add, got %v", err)
	}
	if _, err := usd.Subtract(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch from Subtract, got %v", err)
	}
}

func TestMoneyNegateAndString(t *testing.T) {
	m := New(17250, enums.CurrencyUSD).Negate()
	if m.Amount() != -17250 {
		t.Fatalf("expected -17250, got %d", m.Amount())
	}
	if got := m.String(); got != "-172.50 USD" {
		t.Fatalf("unexpected string %q", got)
	}
	if got := New(500, enums.CurrencyJPY).String(); got != "500 JPY" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestMoniesUnionArithmetic(t *testing.T) {
	a := NewMonies(New(1000, enums.CurrencyUSD), New(200, enums.CurrencyEUR))
	b := NewMonies(New(50, enums.CurrencyUSD), New(300, enums.CurrencyGBP))

	sum := a.Add(b)
	if len(sum) != 3 {
		t.Fatalf("expected 3 currencies, got %d", len(sum))
	}
	if sum.Get(enums.CurrencyUSD).Amount() != 1050 {
		t.Fatalf("unexpected USD %s", sum.Get(enums.CurrencyUSD))
	}
	if sum.Get(enums.CurrencyGBP).Amount() != 300 {
		t.Fatalf("unexpected GBP %s", sum.Get(enums.CurrencyGBP))
	}

	diff := a.Subtract(b)
	if diff.Get(enums.CurrencyGBP).Amount() != -300 {
		t.Fatalf("absent currency should subtract from zero, got %s", diff.Get(enums.CurrencyGBP))
	}
	if diff.Get(enums.CurrencyEUR).Amount() != 200 {
		t.Fatalf("unexpected EUR %s", diff.Get(enums.CurrencyEUR))
	}

	if a.Get(enums.CurrencyUSD).Amount() != 1000 {
		t.Fatal("Add must not mutate the receiver")
	}
}

func TestMoniesSingleMoneyHelpers(t *testing.T) {
	ms := Monies{}.AddMoney(New(10, enums.CurrencyCHF)).SubtractMoney(New(25, enums.CurrencyCHF))
	if ms.Get(enums.CurrencyCHF).Amount() != -15 {
		t.Fatalf("unexpected CHF %s", ms.Get(enums.CurrencyCHF))
	}
	if got := ms.Currencies(); len(got) != 1 || got[0] != enums.CurrencyCHF {
		t.Fatalf("unexpected currencies %v", got)
	}
	if !(Monies{}).IsZero() {
		t.Fatal("empty monies should be zero")
	}
}
