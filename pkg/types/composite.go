package types

import (
	"fmt"
	"strings"
)

// compositeField is one attribute of a Postgres row literal. An unquoted
// empty attribute is SQL NULL; a quoted one is the empty string.
type compositeField struct {
	text string
	null bool
}

func (f compositeField) ptr() *string {
	if f.null {
		return nil
	}
	v := f.text
	return &v
}

// compositeRecord builds a row literal such as ("a","b",).
type compositeRecord struct {
	parts []string
}

func (r *compositeRecord) text(v string) *compositeRecord {
	r.parts = append(r.parts, `"`+escapeComposite(v)+`"`)
	return r
}

func (r *compositeRecord) nullable(v *string) *compositeRecord {
	if v == nil {
		r.parts = append(r.parts, "")
		return r
	}
	return r.text(*v)
}

func (r *compositeRecord) String() string {
	return "(" + strings.Join(r.parts, ",") + ")"
}

func escapeComposite(v string) string {
	if !strings.ContainsAny(v, `"\`) {
		return v
	}
	var b strings.Builder
	b.Grow(len(v) + 4)
	for _, r := range v {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitComposite parses a row literal into exactly want attributes. It
// accepts both backslash escapes and doubled quotes inside quoted values.
func splitComposite(raw string, want int) ([]compositeField, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != '(' || raw[len(raw)-1] != ')' {
		return nil, fmt.Errorf("composite: malformed literal %q", raw)
	}
	body := raw[1 : len(raw)-1]

	fields := make([]compositeField, 0, want)
	var (
		cur    strings.Builder
		quoted bool
		inside bool
	)
	flush := func() {
		text := cur.String()
		// Postgres writes NULL as an empty unquoted attribute; older rows
		// produced by hand may spell it out.
		null := !quoted && (text == "" || strings.EqualFold(text, "NULL"))
		fields = append(fields, compositeField{text: text, null: null})
		cur.Reset()
		quoted = false
	}

	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case ch == '\\' && i+1 < len(body):
			i++
			cur.WriteByte(body[i])
		case ch == '"' && inside && i+1 < len(body) && body[i+1] == '"':
			i++
			cur.WriteByte('"')
		case ch == '"':
			inside = !inside
			quoted = true
		case ch == ',' && !inside:
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	if inside {
		return nil, fmt.Errorf("composite: unterminated quote in %q", raw)
	}
	flush()

	if len(fields) != want {
		return nil, fmt.Errorf("composite: got %d attributes, want %d", len(fields), want)
	}
	return fields, nil
}
