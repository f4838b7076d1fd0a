// Package anchor collects the opening and closing balances a statement
// declares, wherever they are printed.
package anchor

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtparse/internal/money"
)

// Anchor names.
const (
	Opening = "opening"
	Closing = "closing"
)

// Anchor is one labelled balance and every value observed for it, in
// document order. A statement may repeat the same anchor in page footers.
type Anchor struct {
	Name    string
	Pattern *regexp.Regexp // first submatch is the raw currency text
	Values  []decimal.Decimal
}

// New creates an anchor matching label followed by a currency value on the
// same logical line.
func New(name, label string) *Anchor {
	return &Anchor{
		Name:    name,
		Pattern: regexp.MustCompile(regexp.QuoteMeta(label) + `\s+([\d,]+\.\d{2}[ \t]{0,2}(?:Cr)?)\b`),
	}
}

// NewOpening returns the "Opening Balance" anchor.
func NewOpening() *Anchor { return New(Opening, "Opening Balance") }

// NewClosing returns the "Closing Balance" anchor.
func NewClosing() *Anchor { return New(Closing, "Closing Balance") }

// Find returns the raw currency text of every occurrence on a page.
func (a *Anchor) Find(page string) []string {
	var raw []string
	for _, m := range a.Pattern.FindAllStringSubmatch(page, -1) {
		raw = append(raw, m[1])
	}
	return raw
}

// Observe normalizes raw and records it. Duplicates are kept.
func (a *Anchor) Observe(raw string) error {
	v, err := money.Normalize(raw)
	if err != nil {
		return fmt.Errorf("%s balance: %w", a.Name, err)
	}
	a.Values = append(a.Values, v)
	return nil
}

// Value returns the first observed value.
func (a *Anchor) Value() (decimal.Decimal, bool) {
	if len(a.Values) == 0 {
		return decimal.Zero, false
	}
	return a.Values[0], true
}

// Distinct returns the observed values with exact duplicates removed,
// keeping first-seen order.
func (a *Anchor) Distinct() []decimal.Decimal {
	var out []decimal.Decimal
	for _, v := range a.Values {
		seen := false
		for _, o := range out {
			if o.Equal(v) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, v)
		}
	}
	return out
}

// Consistent reports whether every observation carries the same value.
func (a *Anchor) Consistent() bool {
	return len(a.Distinct()) <= 1
}

// Set is the pair of anchors reconciliation needs.
type Set struct {
	Opening *Anchor
	Closing *Anchor
}

// NewSet returns empty opening and closing anchors.
func NewSet() Set {
	return Set{Opening: NewOpening(), Closing: NewClosing()}
}

// All returns the anchors in a fixed order.
func (s Set) All() []*Anchor {
	return []*Anchor{s.Opening, s.Closing}
}

// ScanPage finds every anchor occurrence on page and records it.
func (s Set) ScanPage(page string) error {
	found := Scan(page, s.All()...)
	for _, a := range s.All() {
		for _, raw := range found[a.Name] {
			if err := a.Observe(raw); err != nil {
				return err
			}
		}
	}
	return nil
}

// Scan maps each anchor name to the raw values found on page. Anchors with
// no occurrence are absent from the result.
func Scan(page string, anchors ...*Anchor) map[string][]string {
	found := make(map[string][]string)
	for _, a := range anchors {
		if raw := a.Find(page); len(raw) > 0 {
			found[a.Name] = append(found[a.Name], raw...)
		}
	}
	return found
}
