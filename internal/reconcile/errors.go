package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtparse/internal/model"
)

var (
	// ErrMissingAnchor is returned when an opening or closing balance was
	// never printed on the statement.
	ErrMissingAnchor = errors.New("missing balance anchor")
	// ErrConflictingAnchorValues is returned when one anchor was printed
	// with different values.
	ErrConflictingAnchorValues = errors.New("conflicting anchor values")
	// ErrChainMismatch is returned when a row's balance does not follow
	// from the previous balance.
	ErrChainMismatch = errors.New("balance chain mismatch")
	// ErrAggregateMismatch is returned when the opening balance plus all
	// rows does not reach the closing balance.
	ErrAggregateMismatch = errors.New("aggregate mismatch")
)

// ConflictError lists the distinct values seen for one anchor.
type ConflictError struct {
	Anchor string
	Values []decimal.Decimal
}

func (e *ConflictError) Error() string {
	vals := make([]string, len(e.Values))
	for i, v := range e.Values {
		vals[i] = v.StringFixed(2)
	}
	return fmt.Sprintf("found conflicting values for %s balance: %s", e.Anchor, strings.Join(vals, ";"))
}

func (e *ConflictError) Unwrap() error { return ErrConflictingAnchorValues }

// ChainMismatchError identifies the first row whose stated balance breaks
// the running balance.
type ChainMismatchError struct {
	Index       int
	Transaction model.Transaction
	Previous    decimal.Decimal
	Fee         decimal.Decimal // zero unless fee-aware
	Expected    decimal.Decimal
	Actual      decimal.Decimal
	Discrepancy decimal.Decimal
}

func (e *ChainMismatchError) Error() string {
	return fmt.Sprintf(
		"row %d (%s %q): previous balance %s + amount %s + fee %s = %s, statement says %s (discrepancy %s)",
		e.Index+1,
		e.Transaction.Date.Format("2006-01-02"),
		e.Transaction.Description,
		e.Previous.StringFixed(2),
		e.Transaction.Amount.StringFixed(2),
		e.Fee.StringFixed(2),
		e.Expected.StringFixed(2),
		e.Actual.StringFixed(2),
		e.Discrepancy.StringFixed(2),
	)
}

func (e *ChainMismatchError) Unwrap() error { return ErrChainMismatch }

// AggregateMismatchError reports the closing balance equation.
type AggregateMismatchError struct {
	Opening     decimal.Decimal
	SumAmounts  decimal.Decimal
	SumFees     decimal.Decimal // zero unless fee-aware
	Expected    decimal.Decimal
	Closing     decimal.Decimal
	Discrepancy decimal.Decimal
}

func (e *AggregateMismatchError) Error() string {
	return fmt.Sprintf(
		"opening balance %s + transactions %s + fees %s = %s, closing balance is %s (discrepancy %s)",
		e.Opening.StringFixed(2),
		e.SumAmounts.StringFixed(2),
		e.SumFees.StringFixed(2),
		e.Expected.StringFixed(2),
		e.Closing.StringFixed(2),
		e.Discrepancy.StringFixed(2),
	)
}

func (e *AggregateMismatchError) Unwrap() error { return ErrAggregateMismatch }
