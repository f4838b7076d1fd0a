// Package reconcile checks extracted transactions against the balances the
// statement itself declares.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtparse/internal/anchor"
	"github.com/cleared-dev/stmtparse/internal/model"
)

// DefaultTolerance is the largest discrepancy lenient mode lets through.
var DefaultTolerance = decimal.NewFromInt(30)

// Check names, used in warnings.
const (
	CheckChain     = "chain"
	CheckAggregate = "aggregate"
)

// Options controls how strict reconciliation is.
type Options struct {
	// FeeAware adds each row's bank fee to the balance equations.
	FeeAware bool
	// Lenient downgrades chain and aggregate discrepancies up to Tolerance
	// to warnings.
	Lenient   bool
	Tolerance decimal.Decimal
}

// DefaultOptions returns strict, fee-aware reconciliation.
func DefaultOptions() Options {
	return Options{FeeAware: true, Tolerance: DefaultTolerance}
}

// Warning is a discrepancy accepted in lenient mode.
type Warning struct {
	Check       string
	Index       int // row index for chain warnings, -1 otherwise
	Expected    decimal.Decimal
	Actual      decimal.Decimal
	Discrepancy decimal.Decimal
	Message     string
}

// Report is the outcome of a successful validation.
type Report struct {
	Opening  decimal.Decimal
	Closing  decimal.Decimal
	Warnings []Warning
}

// Validator runs the anchor, chain and aggregate checks.
type Validator struct {
	opts Options
}

// NewValidator creates a Validator.
func NewValidator(opts Options) *Validator {
	return &Validator{opts: opts}
}

// Validate runs all checks in order and stops at the first failure.
func (v *Validator) Validate(anchors anchor.Set, txns []model.Transaction) (*Report, error) {
	if err := CheckAnchors(anchors); err != nil {
		return nil, err
	}
	opening, _ := anchors.Opening.Value()
	closing, _ := anchors.Closing.Value()

	report := &Report{Opening: opening, Closing: closing}

	warnings, err := v.CheckChain(opening, txns)
	if err != nil {
		return nil, err
	}
	report.Warnings = append(report.Warnings, warnings...)

	warning, err := v.CheckAggregate(opening, closing, txns)
	if err != nil {
		return nil, err
	}
	if warning != nil {
		report.Warnings = append(report.Warnings, *warning)
	}
	return report, nil
}

// CheckAnchors requires every anchor to be present and printed with one
// value only. Lenient mode does not apply here.
func CheckAnchors(anchors anchor.Set) error {
	for _, a := range anchors.All() {
		if len(a.Values) == 0 {
			return fmt.Errorf("%w: %s", ErrMissingAnchor, a.Name)
		}
		if !a.Consistent() {
			return &ConflictError{Anchor: a.Name, Values: a.Distinct()}
		}
	}
	return nil
}

// CheckChain walks the rows from the opening balance and verifies every
// stated balance. The walk continues from the stated balance, so one bad row
// produces one finding.
func (v *Validator) CheckChain(opening decimal.Decimal, txns []model.Transaction) ([]Warning, error) {
	var warnings []Warning
	prev := opening
	for i, txn := range txns {
		fee := v.fee(txn)
		expected := prev.Add(txn.Amount).Add(fee)
		if !expected.Equal(txn.Balance) {
			discrepancy := expected.Sub(txn.Balance).Abs()
			if !v.tolerated(discrepancy) {
				return warnings, &ChainMismatchError{
					Index:       i,
					Transaction: txn,
					Previous:    prev,
					Fee:         fee,
					Expected:    expected,
					Actual:      txn.Balance,
					Discrepancy: discrepancy,
				}
			}
			warnings = append(warnings, Warning{
				Check:       CheckChain,
				Index:       i,
				Expected:    expected,
				Actual:      txn.Balance,
				Discrepancy: discrepancy,
				Message: fmt.Sprintf("balance discrepancy of %s on row %d (%s %q) accepted in lenient mode",
					discrepancy.StringFixed(2), i+1, txn.Date.Format("2006-01-02"), txn.Description),
			})
		}
		prev = txn.Balance
	}
	return warnings, nil
}

// CheckAggregate verifies opening + sum(amounts) (+ sum(fees)) == closing.
func (v *Validator) CheckAggregate(opening, closing decimal.Decimal, txns []model.Transaction) (*Warning, error) {
	sumAmounts := decimal.Zero
	sumFees := decimal.Zero
	for _, txn := range txns {
		sumAmounts = sumAmounts.Add(txn.Amount)
		sumFees = sumFees.Add(v.fee(txn))
	}
	expected := opening.Add(sumAmounts).Add(sumFees)
	if expected.Equal(closing) {
		return nil, nil
	}

	discrepancy := expected.Sub(closing).Abs()
	if !v.tolerated(discrepancy) {
		return nil, &AggregateMismatchError{
			Opening:     opening,
			SumAmounts:  sumAmounts,
			SumFees:     sumFees,
			Expected:    expected,
			Closing:     closing,
			Discrepancy: discrepancy,
		}
	}
	return &Warning{
		Check:       CheckAggregate,
		Index:       -1,
		Expected:    expected,
		Actual:      closing,
		Discrepancy: discrepancy,
		Message: fmt.Sprintf("closing balance discrepancy of %s accepted in lenient mode (expected %s, statement says %s)",
			discrepancy.StringFixed(2), expected.StringFixed(2), closing.StringFixed(2)),
	}, nil
}

func (v *Validator) fee(txn model.Transaction) decimal.Decimal {
	if !v.opts.FeeAware {
		return decimal.Zero
	}
	return txn.BankFee
}

func (v *Validator) tolerated(discrepancy decimal.Decimal) bool {
	return v.opts.Lenient && discrepancy.LessThanOrEqual(v.opts.Tolerance)
}
