package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DescriptionPlaceholder replaces an empty description so the row can be
// flagged for manual review downstream.
const DescriptionPlaceholder = "!ERROR: unparsable description text!"

// Transaction is one verified row of a bank statement.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = debit, positive = credit
	Balance     decimal.Decimal // statement balance after this row
	BankFee     decimal.Decimal // zero when the row has no fee column
}

// NeedsReview reports whether the description could not be extracted.
func (t Transaction) NeedsReview() bool {
	return t.Description == DescriptionPlaceholder
}
