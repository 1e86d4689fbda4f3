package documents

import (
	"fmt"
	"strings"
)

// Format selects a renderer.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts the format name case-insensitively.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatPDF, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported document format %q", value)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Filename builds the attachment name for an estimate number.
func (f Format) Filename(number string) string {
	return fmt.Sprintf("estimate-%s.%s", number, f)
}

// Render dispatches to the renderer for f.
func Render(f Format, data Data) ([]byte, error) {
	switch f {
	case FormatPDF:
		return RenderPDF(data)
	case FormatXLSX:
		return RenderXLSX(data)
	}
	return nil, fmt.Errorf("unsupported document format %q", f)
}
