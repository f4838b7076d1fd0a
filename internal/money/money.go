// Package money converts statement currency text into exact decimals.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// CreditMarker is the suffix a statement prints after an inflow.
const CreditMarker = "Cr"

// ErrMalformedAmount is returned when a currency token does not have the
// shape digits.dd after separators and whitespace are removed.
var ErrMalformedAmount = errors.New("malformed amount")

var (
	numeral = regexp.MustCompile(`^\d+\.\d{2}$`)
	token   = regexp.MustCompile(`^\d+(?:,\d+)*\.\d{2}(?:Cr)?$`)
)

// Normalize converts a raw token like " 80,085.69Cr " into a signed decimal.
// Credits are positive, everything else is a debit and comes back negative.
// Empty input is an absent column and yields zero.
func Normalize(raw string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if clean == "" {
		return decimal.Zero, nil
	}

	credit := strings.HasSuffix(clean, CreditMarker)
	if credit {
		clean = strings.TrimSuffix(clean, CreditMarker)
	}
	if !numeral.MatchString(clean) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}

	if !credit {
		clean = "-" + clean
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrMalformedAmount, raw, err)
	}
	return d, nil
}

// IsToken reports whether s is a single money token as printed in a
// transaction row, e.g. "420.69" or "80,085.69Cr".
func IsToken(s string) bool {
	return token.MatchString(s)
}
