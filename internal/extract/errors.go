package extract

import (
	"errors"

	"github.com/cleared-dev/stmtparse/internal/dates"
	"github.com/cleared-dev/stmtparse/internal/money"
	"github.com/cleared-dev/stmtparse/internal/reconcile"
)

// ErrHeaderNotFound is returned when page one has no statement period.
var ErrHeaderNotFound = dates.ErrHeaderNotFound

// Error kinds reported to callers.
const (
	KindHeaderNotFound          = "HeaderNotFound"
	KindMalformedAmount         = "MalformedAmount"
	KindUnknownMonth            = "UnknownMonth"
	KindInvalidDate             = "InvalidDate"
	KindMissingAnchor           = "MissingAnchor"
	KindConflictingAnchorValues = "ConflictingAnchorValues"
	KindChainMismatch           = "ChainMismatch"
	KindAggregateMismatch       = "AggregateMismatch"
	KindUnknown                 = "Unknown"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrHeaderNotFound, KindHeaderNotFound},
	{money.ErrMalformedAmount, KindMalformedAmount},
	{dates.ErrUnknownMonth, KindUnknownMonth},
	{dates.ErrInvalidDate, KindInvalidDate},
	{reconcile.ErrMissingAnchor, KindMissingAnchor},
	{reconcile.ErrConflictingAnchorValues, KindConflictingAnchorValues},
	{reconcile.ErrChainMismatch, KindChainMismatch},
	{reconcile.ErrAggregateMismatch, KindAggregateMismatch},
}

// Kind classifies an extraction error. Errors from outside the taxonomy,
// such as I/O failures, are KindUnknown.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
