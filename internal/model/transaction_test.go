package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionNeedsReview(t *testing.T) {
	tests := []struct {
		desc string
		want bool
	}{
		{"Salary", false},
		{DescriptionPlaceholder, true},
		{"", false},
	}
	for _, tt := range tests {
		txn := Transaction{Description: tt.desc}
		assert.Equal(t, tt.want, txn.NeedsReview(), "NeedsReview(%q)", tt.desc)
	}
}
