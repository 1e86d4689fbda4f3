package documents

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Estimate"

// RenderXLSX writes data as a single-sheet workbook.
func RenderXLSX(data Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	f.SetColWidth(sheetName, "A", "A", 48)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "E", 18)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return nil, fmt.Errorf("title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#212529"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	groupStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
	})
	if err != nil {
		return nil, fmt.Errorf("group style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("cell style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("total style: %w", err)
	}

	r := 1
	set := func(col string, value string) {
		f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, r), sanitizeCell(value))
	}

	set("A", data.Type+" "+data.Number)
	f.MergeCell(sheetName, "A1", "E1")
	f.SetCellStyle(sheetName, "A1", "E1", titleStyle)
	r++
	set("A", "Date")
	set("B", data.Date)
	r++
	set("A", "From")
	set("B", strings.Join(append([]string{data.Sender.Name}, data.Sender.Lines...), ", "))
	r++
	set("A", "To")
	set("B", strings.Join(append([]string{data.Recipient.Name}, data.Recipient.Lines...), ", "))
	r++
	if data.Recipient.VATRegNo != "" {
		set("A", "VAT Reg. No.")
		set("B", data.Recipient.VATRegNo)
		r++
	}
	r++

	for i, h := range []string{"Description", "Qty", "Unit price", "Tax", "Total"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, r)
		f.SetCellValue(sheetName, cell, h)
	}
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", r), fmt.Sprintf("E%d", r), headerStyle)
	r++

	for _, g := range data.Groups {
		if g.Title != "" {
			set("A", g.Title)
			f.SetCellStyle(sheetName, fmt.Sprintf("A%d", r), fmt.Sprintf("A%d", r), groupStyle)
			r++
		}
		for _, row := range g.Rows {
			description := row.Description
			if row.Optional {
				description += " (optional)"
			}
			set("A", description)
			set("B", row.Quantity)
			set("C", row.UnitPrice)
			set("D", row.Rate)
			set("E", row.Total)
			f.SetCellStyle(sheetName, fmt.Sprintf("A%d", r), fmt.Sprintf("E%d", r), cellStyle)
			r++
		}
	}
	r++

	total := func(label string, values []string) {
		for _, v := range values {
			set("D", label)
			set("E", v)
			f.SetCellStyle(sheetName, fmt.Sprintf("D%d", r), fmt.Sprintf("D%d", r), totalStyle)
			r++
		}
	}
	total("Net", data.Net)
	for _, t := range data.Taxes {
		total("Tax "+t.Rate, []string{t.Amount})
	}
	total("Total", data.Gross)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#CCCCCC", Style: 1},
		{Type: "top", Color: "#CCCCCC", Style: 1},
		{Type: "bottom", Color: "#CCCCCC", Style: 1},
		{Type: "right", Color: "#CCCCCC", Style: 1},
	}
}

// sanitizeCell stops spreadsheet apps from evaluating user text as a formula.
func sanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}
