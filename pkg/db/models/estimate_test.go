package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/estimates-backend/pkg/enums"
)

func position(amount int64, rate int64, optional bool, tags ...string) EstimatePosition {
	return EstimatePosition{
		Description:    "item",
		Tags:           tags,
		Quantity:       decimal.NewFromInt(1),
		Amount:         amount,
		AmountCurrency: enums.CurrencyUSD,
		AmountType:     enums.AmountTypeNet,
		AmountRate:     decimal.NewFromInt(rate),
		IsOptional:     optional,
	}
}

func TestEstimateTotalsTwoRates(t *testing.T) {
	e := Estimate{Positions: []EstimatePosition{
		position(10000, 19, false),
		position(5000, 7, false),
	}}

	totals := e.Totals(false)
	if got := totals.Net().Get(enums.CurrencyUSD).Amount(); got != 15000 {
		t.Fatalf("expected net 150.00, got %d", got)
	}
	if got := totals.Gross().Get(enums.CurrencyUSD).Amount(); got != 17250 {
		t.Fatalf("expected gross 172.50, got %d", got)
	}

	taxes := e.Taxes(false)
	if len(taxes) != 2 {
		t.Fatalf("expected two rates, got %v", taxes)
	}
	if got := taxes["19"].Get(enums.CurrencyUSD).Amount(); got != 1900 {
		t.Fatalf("expected 19.00 tax at 19%%, got %d", got)
	}
	if got := taxes["7"].Get(enums.CurrencyUSD).Amount(); got != 350 {
		t.Fatalf("expected 3.50 tax at 7%%, got %d", got)
	}
	if got := e.Balance(false).Get(enums.CurrencyUSD).Amount(); got != -17250 {
		t.Fatalf("expected balance -172.50, got %d", got)
	}
}

func TestEstimateTotalsOptionalPositions(t *testing.T) {
	e := Estimate{Positions: []EstimatePosition{
		position(10000, 19, false),
		position(2500, 19, true),
	}}

	if !e.HasOptionalPositions() {
		t.Fatal("expected optional positions")
	}
	if n := len(e.Totals(false)); n != 1 {
		t.Fatalf("expected optional position excluded, got %d prices", n)
	}
	if n := len(e.Totals(true)); n != 2 {
		t.Fatalf("expected optional position included, got %d prices", n)
	}
	if got := e.Totals(true).Net().Get(enums.CurrencyUSD).Amount(); got != 12500 {
		t.Fatalf("expected net 125.00 with optional, got %d", got)
	}
}

func TestPositionTotalScalesQuantity(t *testing.T) {
	p := position(1999, 19, false)
	p.Quantity = decimal.RequireFromString("2.5")
	if got := p.Total().Amount(); got != 4998 {
		t.Fatalf("expected 49.975 to round to 49.98, got %d", got)
	}
}

func TestEstimateIsOverdue(t *testing.T) {
	date := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	grace := 14 * 24 * time.Hour
	later := date.Add(grace + time.Hour)

	sent := Estimate{Status: enums.EstimateStatusSent, Date: date}
	if !sent.IsOverdue(later, grace) {
		t.Fatal("expected sent estimate past grace to be overdue")
	}
	if sent.IsOverdue(date.Add(grace), grace) {
		t.Fatal("exactly at the deadline is not overdue")
	}
	if sent.IsOverdue(later.AddDate(5, 0, 0), 0) {
		t.Fatal("zero grace disables overdue tracking")
	}
	for _, status := range enums.EstimateStatuses() {
		if status == enums.EstimateStatusSent {
			continue
		}
		e := Estimate{Status: status, Date: date}
		if e.IsOverdue(later, grace) {
			t.Fatalf("status %s must never be overdue", status)
		}
	}
}

func TestEstimateIsCancelable(t *testing.T) {
	for _, status := range enums.EstimateStatuses() {
		e := Estimate{Status: status}
		if got, want := e.IsCancelable(), status == enums.EstimateStatusCreated; got != want {
			t.Fatalf("status %s: expected cancelable=%v", status, want)
		}
	}
}

func TestPositionsGroupedByTags(t *testing.T) {
	e := Estimate{Positions: []EstimatePosition{
		position(1, 0, false, "misc", "$software"),
		position(2, 0, false),
		position(3, 0, false, "$hardware", "$software"),
		position(4, 0, false, "$software"),
	}}

	groups := e.PositionsGroupedByTags(nil)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Name != "$software" || len(groups[0].Positions) != 2 {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	if groups[1].Name != "" || groups[1].Positions[0].Amount != 2 {
		t.Fatalf("expected untagged group second, got %+v", groups[1])
	}
	if groups[2].Name != "$hardware" {
		t.Fatalf("first reserved tag should win, got %q", groups[2].Name)
	}

	ordered := e.PositionsGroupedByTags([]string{"$hardware", "$unused", "", "$software"})
	names := make([]string, 0, len(ordered))
	for _, g := range ordered {
		names = append(names, g.Name)
	}
	want := []string{"$hardware", "", "$software"}
	if len(names) != len(want) {
		t.Fatalf("unexpected groups %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}
}

func TestPositionProductNumber(t *testing.T) {
	p := EstimatePosition{Description: "Widget deluxe (#12345)"}
	if n, ok := p.ProductNumber(); !ok || n != "12345" {
		t.Fatalf("expected 12345, got %q %v", n, ok)
	}
	p.Description = "Consulting"
	if _, ok := p.ProductNumber(); ok {
		t.Fatal("expected no product reference")
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" $Hardware", "misc", "$hardware", ""})
	if len(got) != 2 || got[0] != "$hardware" || got[1] != "misc" {
		t.Fatalf("unexpected tags %v", got)
	}
}

func TestEstimateTitle(t *testing.T) {
	if got := (Estimate{Number: "20240008"}).Title(); got != "#20240008" {
		t.Fatalf("unexpected title %q", got)
	}
}
