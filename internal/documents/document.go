// Package documents renders estimates for download.
package documents

import (
	"strings"
	"time"

	"github.com/angelmondragon/estimates-backend/pkg/config"
	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	"github.com/angelmondragon/estimates-backend/pkg/money"
)

// DocumentTypeEstimate is printed as the document heading.
const DocumentTypeEstimate = "Estimate"

// Party is a sender or recipient block.
type Party struct {
	Name     string
	Lines    []string
	Email    string
	Phone    string
	VATRegNo string
}

// Row is one printed position.
type Row struct {
	Description string
	Quantity    string
	UnitPrice   string
	Rate        string
	Total       string
	Optional    bool
}

// Group is a titled run of rows. Title is empty for untagged positions.
type Group struct {
	Title string
	Rows  []Row
}

// TaxLine is the tax collected at one rate in one currency.
type TaxLine struct {
	Rate   string
	Amount string
}

// Data is everything a renderer needs; amounts are already formatted.
type Data struct {
	Type      string
	Subject   string
	Number    string
	Date      string
	Sender    Party
	Recipient Party
	Letter    string
	Terms     string
	TaxNote   string
	Note      string
	Groups    []Group
	Net       []string
	Taxes     []TaxLine
	Gross     []string
	BCC       string
}

// Options tune BuildEstimate.
type Options struct {
	// GroupOrder lists grouping tags to print first.
	GroupOrder []string
	// IncludeOptional adds optional positions to the totals.
	IncludeOptional bool
	BCC             string
}

// BuildEstimate flattens an estimate with its positions into printable data.
func BuildEstimate(estimate models.Estimate, sender config.BillingConfig, opts Options) Data {
	data := Data{
		Type:      DocumentTypeEstimate,
		Subject:   DocumentTypeEstimate + " " + estimate.Title(),
		Number:    estimate.Number,
		Date:      estimate.Date.Format(time.DateOnly),
		Sender:    senderParty(sender),
		Recipient: recipientParty(estimate),
		Letter:    deref(estimate.Letter),
		Terms:     deref(estimate.Terms),
		TaxNote:   deref(estimate.TaxNote),
		Note:      deref(estimate.Note),
		BCC:       opts.BCC,
	}

	for _, g := range estimate.PositionsGroupedByTags(opts.GroupOrder) {
		group := Group{Title: groupTitle(g.Name)}
		for _, p := range g.Positions {
			group.Rows = append(group.Rows, Row{
				Description: p.Description,
				Quantity:    p.Quantity.String(),
				UnitPrice:   money.New(p.Amount, p.AmountCurrency).String() + " " + string(p.AmountType),
				Rate:        p.AmountRate.String() + "%",
				Total:       p.Total().Net().String(),
				Optional:    p.IsOptional,
			})
		}
		data.Groups = append(data.Groups, group)
	}

	totals := estimate.Totals(opts.IncludeOptional)
	data.Net = formatMonies(totals.Net())
	data.Gross = formatMonies(totals.Gross())
	taxes := totals.TaxesByRate()
	for _, rate := range totals.Sum().Rates() {
		for _, amount := range formatMonies(taxes[rate]) {
			data.Taxes = append(data.Taxes, TaxLine{Rate: rate + "%", Amount: amount})
		}
	}
	return data
}

func senderParty(b config.BillingConfig) Party {
	name := b.Organization
	if name == "" {
		name = b.Name
	}
	var lines []string
	if b.Organization != "" && b.Name != "" {
		lines = append(lines, b.Name)
	}
	for _, l := range strings.Split(b.Address, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return Party{Name: name, Lines: lines, Email: b.Email, Phone: b.Phone, VATRegNo: b.VATRegNo}
}

func recipientParty(e models.Estimate) Party {
	lines := e.Address.Lines()
	p := Party{VATRegNo: deref(e.UserVATRegNo), Phone: deref(e.Address.Phone)}
	if len(lines) > 0 {
		p.Name, p.Lines = lines[0], lines[1:]
	}
	return p
}

func groupTitle(tag string) string {
	return strings.TrimPrefix(tag, models.GroupTagPrefix)
}

func formatMonies(ms money.Monies) []string {
	out := make([]string, 0, len(ms))
	for _, c := range ms.Currencies() {
		out = append(out, ms.Get(c).String())
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
