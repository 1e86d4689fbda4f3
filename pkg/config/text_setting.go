package config

import "strings"

// TextMode selects how a default letter or terms text is produced.
type TextMode int

const (
	TextDisabled TextMode = iota
	TextDefault
	TextFixed
	TextComputed
)

// TextContext is handed to computed text settings.
type TextContext struct {
	// Purpose is "entity" when filling a new estimate and "mail" when composing a message.
	Purpose      string
	UserName     string
	Organization string
	Number       string
}

// TextSetting is one of: disabled, enabled with the built-in default text,
// a fixed text, or a text computed per context.
type TextSetting struct {
	mode    TextMode
	text    string
	compute func(TextContext) string
}

func DisabledText() TextSetting { return TextSetting{mode: TextDisabled} }

func DefaultText() TextSetting { return TextSetting{mode: TextDefault} }

func FixedText(text string) TextSetting { return TextSetting{mode: TextFixed, text: text} }

func ComputedText(fn func(TextContext) string) TextSetting {
	if fn == nil {
		return DisabledText()
	}
	return TextSetting{mode: TextComputed, compute: fn}
}

// Mode returns the variant tag.
func (s TextSetting) Mode() TextMode {
	return s.mode
}

// Enabled reports whether the field is offered at all.
func (s TextSetting) Enabled() bool {
	return s.mode != TextDisabled
}

// Resolve returns the text to prefill. Disabled and default settings yield
// an empty string; callers supply their own default text for the latter.
func (s TextSetting) Resolve(ctx TextContext) string {
	switch s.mode {
	case TextFixed:
		return s.text
	case TextComputed:
		return s.compute(ctx)
	default:
		return ""
	}
}

// Decode implements envconfig.Decoder: "false" or "" disables, "true"
// enables the default text, anything else is a fixed text.
func (s *TextSetting) Decode(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "0", "off":
		*s = DisabledText()
	case "true", "1", "on":
		*s = DefaultText()
	default:
		*s = FixedText(value)
	}
	return nil
}
