// Package export writes reconciled transactions as delimited text.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/cleared-dev/stmtparse/internal/model"
)

// Header lists the exported columns.
const Header = "date,description,amount,balance,bank_fee"

// DefaultSeparator is used when Writer.Separator is zero.
const DefaultSeparator = ','

const (
	numFields  = 5
	dateFormat = "2006-01-02"
	colDate    = 0
	colDesc    = 1
	colAmount  = 2
	colBalance = 3
	colFee     = 4
)

var (
	// ErrSeparatorInField is returned when a value contains the separator.
	// Such values are rejected rather than quoted.
	ErrSeparatorInField = errors.New("field contains separator")
	// ErrInvalidSeparator is returned for separators that cannot delimit.
	ErrInvalidSeparator = errors.New("invalid separator")
)

// Writer writes transactions one per line.
type Writer struct {
	Separator rune
}

// NewWriter returns a Writer using sep, or the default when sep is zero.
func NewWriter(sep rune) *Writer {
	return &Writer{Separator: sep}
}

func (w *Writer) separator() (rune, error) {
	sep := w.Separator
	if sep == 0 {
		sep = DefaultSeparator
	}
	if sep == '"' || sep == '\r' || sep == '\n' || sep == utf8.RuneError || !utf8.ValidRune(sep) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeparator, sep)
	}
	return sep, nil
}

// ParseSeparator turns a config or flag value into a separator rune. The
// word "tab" and the escape `\t` both mean a tab.
func ParseSeparator(s string) (rune, error) {
	switch s {
	case "":
		return DefaultSeparator, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("%w: %q must be a single character", ErrInvalidSeparator, s)
	}
	if _, err := (&Writer{Separator: r}).separator(); err != nil {
		return 0, err
	}
	return r, nil
}

// Write writes the header and txns to out.
func (w *Writer) Write(out io.Writer, txns []model.Transaction) error {
	sep, err := w.separator()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(out)
	cw.Comma = sep

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, txn := range txns {
		row := MarshalTransaction(txn)
		for _, field := range row {
			if strings.ContainsRune(field, sep) {
				return fmt.Errorf("row %d: %w: %q", i+1, ErrSeparatorInField, field)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes txns to path. Nothing is left behind at path when
// writing fails.
func (w *Writer) WriteFile(path string, txns []model.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := w.Write(f, txns); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// MarshalTransaction converts a Transaction to a row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = txn.Date.Format(dateFormat)
	row[colDesc] = txn.Description
	row[colAmount] = txn.Amount.StringFixed(2)
	row[colBalance] = txn.Balance.StringFixed(2)
	row[colFee] = txn.BankFee.StringFixed(2)
	return row
}
