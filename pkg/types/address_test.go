package types

import "testing"

func TestAddressRoundTripThroughComposite(t *testing.T) {
	line2 := `Suite "B", 2nd floor`
	in := Address{
		Recipient:    "Dana Weber",
		Organization: "Weber, Sons & Co",
		Line1:        "Hauptstr. 1",
		Line2:        &line2,
		Locality:     "Berlin",
		PostalCode:   "10115",
		Country:      "de",
	}

	raw, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out Address
	if err := out.Scan(raw); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if out.Organization != in.Organization || out.Line2 == nil || *out.Line2 != line2 {
		t.Fatalf("unexpected decode %+v", out)
	}
	if out.Country != "DE" {
		t.Fatalf("expected normalized country, got %q", out.Country)
	}
	if out.Phone != nil {
		t.Fatalf("expected nil phone, got %v", *out.Phone)
	}
}

func TestAddressZeroValueIsNull(t *testing.T) {
	v, err := Address{}.Value()
	if err != nil || v != nil {
		t.Fatalf("expected NULL for empty address, got %v %v", v, err)
	}
	var a Address
	if err := a.Scan(nil); err != nil || !a.IsZero() {
		t.Fatalf("expected zero address from NULL")
	}
}

func TestAddressRequiresRecipient(t *testing.T) {
	if _, err := (Address{Line1: "x"}).Value(); err == nil {
		t.Fatal("expected error without recipient or organization")
	}
}

func TestAddressLines(t *testing.T) {
	a := Address{Recipient: "Dana", Line1: "Main St 1", PostalCode: "10115", Locality: "Berlin", Country: "DE"}
	lines := a.Lines()
	if len(lines) != 4 || lines[2] != "10115 Berlin" {
		t.Fatalf("unexpected lines %v", lines)
	}
}

func TestAddressScanHandlesPostgresNulls(t *testing.T) {
	var a Address
	raw := `("Dana",,"Main ""Old"" St",,"Berlin","10115",,"DE",)`
	if err := a.Scan([]byte(raw)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if a.Line1 != `Main "Old" St` {
		t.Fatalf("unexpected line1 %q", a.Line1)
	}
	if a.Line2 != nil || a.Phone != nil {
		t.Fatalf("expected NULL attributes to decode as nil")
	}
}

func TestAddressScanRejectsMalformed(t *testing.T) {
	var a Address
	for _, raw := range []string{`"Dana"`, `("Dana","x)`, `("a","b")`} {
		if err := a.Scan(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
