package documents

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	mutedColor    = &props.Color{Red: 100, Green: 100, Blue: 100}
	headerBgColor = &props.Color{Red: 33, Green: 37, Blue: 41}
	altBgColor    = &props.Color{Red: 248, Green: 249, Blue: 250}
)

// RenderPDF lays out data as an A4 PDF.
func RenderPDF(data Data) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		WithTitle(data.Subject, true).
		WithSubject(data.Subject, true).
		WithAuthor(data.Sender.Name, true).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   mutedColor,
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, data)
	addParties(m, data)
	addParagraph(m, data.Letter)
	addPositions(m, data)
	addTotals(m, data)
	addParagraph(m, data.TaxNote)
	addParagraph(m, data.Terms)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate estimate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, data Data) {
	m.AddRows(
		row.New(10).Add(
			col.New(6).Add(text.New(data.Sender.Name, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Left})),
			col.New(6).Add(text.New(data.Type, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right})),
		),
		row.New(7).Add(
			col.New(6).Add(text.New(joinNonEmpty(data.Sender.Lines, " | "), props.Text{Size: 8, Color: mutedColor})),
			col.New(6).Add(text.New(data.Subject, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
		),
		row.New(6).Add(
			col.New(6).Add(text.New(joinNonEmpty([]string{data.Sender.Email, data.Sender.Phone}, " | "), props.Text{Size: 8, Color: mutedColor})),
			col.New(6).Add(text.New("Date: "+data.Date, props.Text{Size: 9, Align: align.Right})),
		),
	)
	if data.Sender.VATRegNo != "" {
		m.AddRows(row.New(5).Add(
			col.New(12).Add(text.New("VAT Reg. No.: "+data.Sender.VATRegNo, props.Text{Size: 7, Color: mutedColor})),
		))
	}
	m.AddRows(row.New(4))
}

func addParties(m core.Maroto, data Data) {
	m.AddRows(row.New(6).Add(
		col.New(12).Add(text.New("TO", props.Text{Size: 7, Style: fontstyle.Bold, Color: mutedColor})),
	))
	m.AddRows(row.New(6).Add(
		col.New(12).Add(text.New(data.Recipient.Name, props.Text{Size: 10, Style: fontstyle.Bold})),
	))
	for _, line := range data.Recipient.Lines {
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New(line, props.Text{Size: 9}))))
	}
	if data.Recipient.VATRegNo != "" {
		m.AddRows(row.New(5).Add(
			col.New(12).Add(text.New("VAT Reg. No.: "+data.Recipient.VATRegNo, props.Text{Size: 8})),
		))
	}
	m.AddRows(row.New(6))
}

func addParagraph(m core.Maroto, body string) {
	if body == "" {
		return
	}
	m.AddRows(
		row.New().Add(col.New(12).Add(text.New(body, props.Text{Size: 9, Top: 2}))),
		row.New(4),
	)
}

func addPositions(m core.Maroto, data Data) {
	headerText := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: &props.Color{Red: 255, Green: 255, Blue: 255}}
	headerLeft := headerText
	headerLeft.Align = align.Left
	headerCell := &props.Cell{BackgroundColor: headerBgColor}

	m.AddRows(row.New(8).Add(
		col.New(6).Add(text.New("Description", headerLeft)).WithStyle(headerCell),
		col.New(1).Add(text.New("Qty", headerText)).WithStyle(headerCell),
		col.New(2).Add(text.New("Unit price", headerText)).WithStyle(headerCell),
		col.New(1).Add(text.New("Tax", headerText)).WithStyle(headerCell),
		col.New(2).Add(text.New("Total", headerText)).WithStyle(headerCell),
	))

	body := props.Text{Size: 8}
	right := props.Text{Size: 8, Align: align.Right}
	center := props.Text{Size: 8, Align: align.Center}
	n := 0
	for _, g := range data.Groups {
		if g.Title != "" {
			m.AddRows(row.New(7).Add(
				col.New(12).Add(text.New(g.Title, props.Text{Size: 9, Style: fontstyle.Bold, Top: 1})),
			))
		}
		for _, r := range g.Rows {
			description := r.Description
			if r.Optional {
				description += " (optional)"
			}
			var cell *props.Cell
			if n%2 == 1 {
				cell = &props.Cell{BackgroundColor: altBgColor}
			}
			m.AddRows(row.New(7).Add(
				col.New(6).Add(text.New(description, body)).WithStyle(cell),
				col.New(1).Add(text.New(r.Quantity, center)).WithStyle(cell),
				col.New(2).Add(text.New(r.UnitPrice, right)).WithStyle(cell),
				col.New(1).Add(text.New(r.Rate, center)).WithStyle(cell),
				col.New(2).Add(text.New(r.Total, right)).WithStyle(cell),
			))
			n++
		}
	}
	m.AddRows(row.New(4))
}

func addTotals(m core.Maroto, data Data) {
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 9, Align: align.Right}
	line := func(name, amount string, style props.Text) {
		m.AddRows(row.New(6).Add(
			col.New(8),
			col.New(2).Add(text.New(name, label)),
			col.New(2).Add(text.New(amount, style)),
		))
	}
	for _, v := range data.Net {
		line("Net", v, value)
	}
	for _, t := range data.Taxes {
		line("Tax "+t.Rate, t.Amount, value)
	}
	bold := value
	bold.Style = fontstyle.Bold
	for _, v := range data.Gross {
		line("Total", v, bold)
	}
	m.AddRows(row.New(4))
}

func joinNonEmpty(parts []string, sep string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
