// Package rows recognises transaction rows in statement text.
//
// A row starts with a two-digit day and a capitalised month abbreviation,
// followed by free description text and then two or three money tokens:
// amount, balance and an optional fee.
//
//	24 Jan Salary                5,000.00Cr   5,000.00Cr
//	25 Jan Groceries                 420.69     4,579.31    2.50
//
// The money tokens are peeled off the end of the line right to left, so a
// description that itself ends in money-shaped text loses that text to the
// amount columns. Statements seen so far never print such descriptions.
package rows

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cleared-dev/stmtparse/internal/money"
)

const (
	minMoneyTokens = 2
	maxMoneyTokens = 3
)

var datePrefix = regexp.MustCompile(`^(\d{2})\s+([A-Z][a-z]{2})`)

// Match is a classified transaction row, still as raw text.
type Match struct {
	Line        string
	Day         string
	Month       string
	Description string
	Amount      string
	Balance     string
	Fee         string // empty when the row has no fee column
}

// HasDescription reports whether any description text sat between the date
// and the money columns.
func (m Match) HasDescription() bool {
	return m.Description != ""
}

// HasFee reports whether the row carried a third money token.
func (m Match) HasFee() bool {
	return m.Fee != ""
}

// Classify decomposes line into a Match. Lines that are not transaction
// rows (headers, footers, wrapped descriptions, blanks) return false.
func Classify(line string) (Match, bool) {
	line = strings.TrimSpace(line)
	loc := datePrefix.FindStringSubmatchIndex(line)
	if loc == nil {
		return Match{}, false
	}

	rest, tokens := splitMoneySuffix(line[loc[1]:])
	if len(tokens) < minMoneyTokens {
		return Match{}, false
	}

	m := Match{
		Line:        line,
		Day:         line[loc[2]:loc[3]],
		Month:       line[loc[4]:loc[5]],
		Description: strings.TrimSpace(rest),
		Amount:      tokens[0],
		Balance:     tokens[1],
	}
	if len(tokens) == maxMoneyTokens {
		m.Fee = tokens[2]
	}
	return m, true
}

// LooksLikeRow reports whether line starts like a transaction row, whether or
// not the rest of it classifies.
func LooksLikeRow(line string) bool {
	return datePrefix.MatchString(strings.TrimSpace(line))
}

// splitMoneySuffix scans s from the right, collecting up to maxMoneyTokens
// whitespace-separated money tokens. It returns the text in front of them
// and the tokens in left-to-right order. Tokens are whitespace delimited, so
// "Ref12.00" stays description text.
func splitMoneySuffix(s string) (string, []string) {
	var tokens []string
	for len(tokens) < maxMoneyTokens {
		trimmed := strings.TrimRightFunc(s, unicode.IsSpace)
		start := strings.LastIndexFunc(trimmed, unicode.IsSpace) + 1
		tok := trimmed[start:]
		if !money.IsToken(tok) {
			break
		}
		tokens = append([]string{tok}, tokens...)
		s = trimmed[:start]
		if start == 0 {
			break
		}
	}
	return s, tokens
}
