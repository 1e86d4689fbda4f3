// Package clientgroups classifies users for tax purposes. Groups are
// evaluated in registration order and the first whose condition holds wins.
package clientgroups

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	"github.com/angelmondragon/estimates-backend/pkg/enums"
)

// TaxType is a named tax treatment. Note is printed on documents and does
// not depend on the individual position rates.
type TaxType struct {
	Name  string
	Title string
	Rate  decimal.Decimal
	Note  string
}

// Group maps users to a tax type and pricing defaults.
type Group struct {
	Name           string
	Title          string
	Matches        func(user models.User) bool
	TaxType        string
	AmountCurrency enums.Currency
	AmountType     enums.AmountType
}

// Resolution is the outcome of classifying a user.
type Resolution struct {
	Group   Group
	TaxType TaxType
}

type Registry struct {
	groups   []Group
	taxTypes map[string]TaxType
}

// NewRegistry validates that every group references a known tax type. All
// problems are reported together.
func NewRegistry(taxTypes []TaxType, groups []Group) (*Registry, error) {
	var errs error
	byName := make(map[string]TaxType, len(taxTypes))
	for _, tt := range taxTypes {
		if tt.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("tax type without name"))
			continue
		}
		byName[tt.Name] = tt
	}
	for _, g := range groups {
		if g.Matches == nil {
			errs = multierr.Append(errs, fmt.Errorf("client group %q has no condition", g.Name))
		}
		if _, ok := byName[g.TaxType]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("client group %q references unknown tax type %q", g.Name, g.TaxType))
		}
		if !g.AmountCurrency.IsValid() || !g.AmountType.IsValid() {
			errs = multierr.Append(errs, fmt.Errorf("client group %q has invalid pricing defaults", g.Name))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return &Registry{groups: append([]Group(nil), groups...), taxTypes: byName}, nil
}

// Resolve returns the first group matching user.
func (r *Registry) Resolve(user models.User) (Resolution, bool) {
	for _, g := range r.groups {
		if g.Matches(user) {
			return Resolution{Group: g, TaxType: r.taxTypes[g.TaxType]}, true
		}
	}
	return Resolution{}, false
}

// TaxType looks up a tax type by name.
func (r *Registry) TaxType(name string) (TaxType, bool) {
	tt, ok := r.taxTypes[name]
	return tt, ok
}

// Groups lists the registered groups in evaluation order.
func (r *Registry) Groups() []Group {
	return append([]Group(nil), r.groups...)
}

var euCountries = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "CY": {}, "CZ": {}, "DE": {}, "DK": {}, "EE": {}, "ES": {},
	"FI": {}, "FR": {}, "GR": {}, "HR": {}, "HU": {}, "IE": {}, "IT": {}, "LT": {}, "LU": {},
	"LV": {}, "MT": {}, "NL": {}, "PL": {}, "PT": {}, "RO": {}, "SE": {}, "SI": {}, "SK": {},
}

const (
	TaxTypeStandard      = "standard"
	TaxTypeReverseCharge = "reverse-charge"
	TaxTypeExport        = "export"
)

// Default builds the registry used by the API: merchants with a VAT number
// in another EU country are reverse-charged, customers outside the EU are
// exported tax-free, and every other active user pays the standard rate.
// Inactive users and unknown roles are not classified.
func Default(homeCountry string, currency enums.Currency) *Registry {
	home := strings.ToUpper(homeCountry)
	country := func(u models.User) string {
		return strings.ToUpper(strings.TrimSpace(u.BillingAddress.Country))
	}
	taxTypes := []TaxType{
		{Name: TaxTypeStandard, Title: "Standard", Rate: decimal.NewFromInt(19)},
		{Name: TaxTypeReverseCharge, Title: "Reverse charge", Rate: decimal.Zero,
			Note: "Reverse charge: VAT liability passes to the recipient of this service."},
		{Name: TaxTypeExport, Title: "Export", Rate: decimal.Zero,
			Note: "Tax-free export of services outside the European Union."},
	}
	groups := []Group{
		{
			Name:  "merchant-eu",
			Title: "EU merchant",
			Matches: func(u models.User) bool {
				c := country(u)
				_, inEU := euCountries[c]
				return u.IsActive && u.Role == "merchant" && u.VATRegNo != nil && inEU && c != home
			},
			TaxType:        TaxTypeReverseCharge,
			AmountCurrency: currency,
			AmountType:     enums.AmountTypeNet,
		},
		{
			Name:  "foreign",
			Title: "Outside EU",
			Matches: func(u models.User) bool {
				c := country(u)
				_, inEU := euCountries[c]
				return u.IsActive && c != "" && !inEU
			},
			TaxType:        TaxTypeExport,
			AmountCurrency: currency,
			AmountType:     enums.AmountTypeNet,
		},
		{
			Name:  "merchant",
			Title: "Merchant",
			Matches: func(u models.User) bool {
				return u.IsActive && u.Role == "merchant"
			},
			TaxType:        TaxTypeStandard,
			AmountCurrency: currency,
			AmountType:     enums.AmountTypeNet,
		},
		{
			Name:  "customer",
			Title: "Customer",
			Matches: func(u models.User) bool {
				return u.IsActive && u.Role == "customer"
			},
			TaxType:        TaxTypeStandard,
			AmountCurrency: currency,
			AmountType:     enums.AmountTypeGross,
		},
	}
	r, err := NewRegistry(taxTypes, groups)
	if err != nil {
		panic(err)
	}
	return r
}
