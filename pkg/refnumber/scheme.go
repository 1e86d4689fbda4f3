// Package refnumber assigns human-readable, per-year sequential reference
// numbers such as 20240008.
package refnumber

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultSortPattern    = `([0-9]{4}[0-9]{4})`
	DefaultExtractPattern = `[0-9]{4}([0-9]{4})`
	DefaultTemplate       = `%Y%04d`
)

var (
	// ErrNumberGeneration is returned when an existing number cannot be
	// decomposed with the configured patterns or the next sequence no longer
	// fits the template.
	ErrNumberGeneration = errors.New("reference number generation failed")
	// ErrDuplicateNumber is returned when a number is already assigned.
	ErrDuplicateNumber = errors.New("reference number already in use")
	// ErrNumberRequired is returned when generation is disabled and no number was supplied.
	ErrNumberRequired = errors.New("reference number required")
)

var sequenceVerb = regexp.MustCompile(`%(0?)([0-9]*)d`)

// Scheme describes how numbers are ordered, decomposed and rendered.
type Scheme struct {
	sort     *regexp.Regexp
	extract  *regexp.Regexp
	template string
	width    int
}

// NewScheme compiles a scheme. Both patterns must carry one capture group and
// the template exactly one zero-padded integer verb for the sequence, so that
// generated sort keys have a fixed width.
func NewScheme(sortPattern, extractPattern, template string) (*Scheme, error) {
	sortRe, err := regexp.Compile(sortPattern)
	if err != nil {
		return nil, fmt.Errorf("compile sort pattern: %w", err)
	}
	extractRe, err := regexp.Compile(extractPattern)
	if err != nil {
		return nil, fmt.Errorf("compile extract pattern: %w", err)
	}
	if sortRe.NumSubexp() < 1 || extractRe.NumSubexp() < 1 {
		return nil, errors.New("sort and extract patterns need a capture group")
	}
	verbs := sequenceVerb.FindAllStringSubmatch(template, -1)
	if len(verbs) != 1 {
		return nil, fmt.Errorf("template %q must contain exactly one sequence verb", template)
	}
	width, _ := strconv.Atoi(verbs[0][2])
	if verbs[0][1] != "0" || width < 1 {
		return nil, fmt.Errorf("template %q must zero-pad the sequence to a fixed width, e.g. %%04d", template)
	}
	return &Scheme{sort: sortRe, extract: extractRe, template: template, width: width}, nil
}

// Default returns the YYYYNNNN scheme.
func Default() *Scheme {
	s, err := NewScheme(DefaultSortPattern, DefaultExtractPattern, DefaultTemplate)
	if err != nil {
		panic(err)
	}
	return s
}

// Prefix renders the part of the template that precedes the sequence for date.
// Numbers of the same period share this prefix.
func (s *Scheme) Prefix(date time.Time) string {
	loc := sequenceVerb.FindStringIndex(s.template)
	return renderDate(s.template[:loc[0]], date)
}

// Format renders the number for date and sequence.
func (s *Scheme) Format(date time.Time, sequence int) (string, error) {
	if sequence < 1 {
		return "", fmt.Errorf("%w: sequence %d out of range", ErrNumberGeneration, sequence)
	}
	if s.width > 0 && len(strconv.Itoa(sequence)) > s.width {
		return "", fmt.Errorf("%w: sequence %d exceeds %d digits", ErrNumberGeneration, sequence, s.width)
	}
	return fmt.Sprintf(renderDate(s.template, date), sequence), nil
}

// SortKey returns the comparable portion of number.
func (s *Scheme) SortKey(number string) (string, error) {
	m := s.sort.FindStringSubmatch(number)
	if m == nil {
		return "", fmt.Errorf("%w: %q does not match sort pattern", ErrNumberGeneration, number)
	}
	return m[1], nil
}

// Sequence extracts the per-period counter from number.
func (s *Scheme) Sequence(number string) (int, error) {
	m := s.extract.FindStringSubmatch(number)
	if m == nil {
		return 0, fmt.Errorf("%w: %q does not match extract pattern", ErrNumberGeneration, number)
	}
	seq, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrNumberGeneration, number, err)
	}
	return seq, nil
}

// Next picks the highest of existing numbers that belong to date's period and
// returns its successor. Numbers of other periods are ignored; when none is
// left the sequence starts at 1.
func (s *Scheme) Next(date time.Time, existing []string) (string, error) {
	prefix := s.Prefix(date)
	var (
		maxNumber string
		maxKey    string
	)
	for _, n := range existing {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		key, err := s.SortKey(n)
		if err != nil {
			return "", err
		}
		if maxNumber == "" || compareKeys(key, maxKey) > 0 {
			maxNumber, maxKey = n, key
		}
	}
	if maxNumber == "" {
		return s.Format(date, 1)
	}
	seq, err := s.Sequence(maxNumber)
	if err != nil {
		return "", err
	}
	return s.Format(date, seq+1)
}

// compareKeys orders digit keys numerically and other keys lexically. Keys of
// generated numbers have a fixed width; lexical order is only exact for those.
func compareKeys(a, b string) int {
	if len(a) != len(b) {
		if _, errA := strconv.ParseUint(a, 10, 64); errA == nil {
			if _, errB := strconv.ParseUint(b, 10, 64); errB == nil {
				if len(a) < len(b) {
					return -1
				}
				return 1
			}
		}
	}
	return strings.Compare(a, b)
}

func renderDate(tmpl string, date time.Time) string {
	r := strings.NewReplacer(
		"%Y", fmt.Sprintf("%04d", date.Year()),
		"%y", fmt.Sprintf("%02d", date.Year()%100),
		"%m", fmt.Sprintf("%02d", int(date.Month())),
	)
	return r.Replace(tmpl)
}
