package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Address is the postal snapshot copied onto estimates and invoices. It is
// stored as a billing_address_t composite.
type Address struct {
	Recipient          string  `json:"recipient"`
	Organization       string  `json:"organization,omitempty"`
	Line1              string  `json:"line1"`
	Line2              *string `json:"line2,omitempty"`
	Locality           string  `json:"locality"`
	PostalCode         string  `json:"postal_code"`
	AdministrativeArea string  `json:"administrative_area,omitempty"`
	Country            string  `json:"country"`
	Phone              *string `json:"phone,omitempty"`
}

const addressFieldCount = 9

// IsZero reports whether no field carries data.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Lines renders the address the way it is printed on documents.
func (a Address) Lines() []string {
	var lines []string
	add := func(v string) {
		if v = strings.TrimSpace(v); v != "" {
			lines = append(lines, v)
		}
	}
	add(a.Recipient)
	add(a.Organization)
	add(a.Line1)
	if a.Line2 != nil {
		add(*a.Line2)
	}
	add(strings.TrimSpace(a.PostalCode + " " + a.Locality))
	add(a.AdministrativeArea)
	add(a.Country)
	return lines
}

// Value marshals Address into a Postgres composite literal.
func (a Address) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	if strings.TrimSpace(a.Recipient) == "" && strings.TrimSpace(a.Organization) == "" {
		return nil, fmt.Errorf("address: missing recipient or organization")
	}

	var rec compositeRecord
	rec.text(a.Recipient).
		text(a.Organization).
		text(a.Line1).
		nullable(a.Line2).
		text(a.Locality).
		text(a.PostalCode).
		text(a.AdministrativeArea).
		text(strings.ToUpper(strings.TrimSpace(a.Country))).
		nullable(a.Phone)
	return rec.String(), nil
}

// Scan decodes the Postgres composite literal.
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}

	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("address: unsupported scan type %T", value)
	}

	fields, err := splitComposite(raw, addressFieldCount)
	if err != nil {
		return err
	}

	*a = Address{
		Recipient:          fields[0].text,
		Organization:       fields[1].text,
		Line1:              fields[2].text,
		Line2:              fields[3].ptr(),
		Locality:           fields[4].text,
		PostalCode:         fields[5].text,
		AdministrativeArea: fields[6].text,
		Country:            fields[7].text,
		Phone:              fields[8].ptr(),
	}
	return nil
}

func toString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
