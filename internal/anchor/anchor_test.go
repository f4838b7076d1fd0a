package anchor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

const page1 = `FNB Business Account
Statement Period : 01 January 2024 to 31 January 2024
Opening Balance          1,250.00 Cr       Closing Balance      980.15Cr
24 Jan Salary 5,000.00Cr 6,250.00Cr
`

const page2 = `Continued
Closing Balance    980.15Cr
Page 2`

func TestScan(t *testing.T) {
	set := NewSet()
	found := Scan(page1, set.All()...)
	assert.Equal(t, []string{"1,250.00 Cr"}, found[Opening])
	assert.Equal(t, []string{"980.15Cr"}, found[Closing])

	found = Scan(page2, set.All()...)
	_, ok := found[Opening]
	assert.False(t, ok)
	assert.Equal(t, []string{"980.15Cr"}, found[Closing])
}

func TestScan_MultipleOnOnePage(t *testing.T) {
	a := NewOpening()
	raw := a.Find("Opening Balance 10.00\nfooter Opening Balance 10.00\nOpening Balance 11.00")
	assert.Equal(t, []string{"10.00", "10.00", "11.00"}, raw)
}

func TestSet_ScanPage(t *testing.T) {
	set := NewSet()
	require.NoError(t, set.ScanPage(page1))
	require.NoError(t, set.ScanPage(page2))

	require.Len(t, set.Opening.Values, 1)
	assert.True(t, dec("1250.00").Equal(set.Opening.Values[0]))
	require.Len(t, set.Closing.Values, 2)
	assert.True(t, set.Closing.Consistent())

	v, ok := set.Closing.Value()
	require.True(t, ok)
	assert.True(t, dec("980.15").Equal(v))
}

func TestAnchor_Debit(t *testing.T) {
	set := NewSet()
	require.NoError(t, set.ScanPage("Opening Balance 420.69"))
	v, ok := set.Opening.Value()
	require.True(t, ok)
	assert.True(t, dec("-420.69").Equal(v))
}

func TestAnchor_Consistency(t *testing.T) {
	a := NewOpening()
	require.NoError(t, a.Observe("100.00Cr"))
	require.NoError(t, a.Observe("100.00Cr"))
	assert.True(t, a.Consistent())
	assert.Len(t, a.Distinct(), 1)

	require.NoError(t, a.Observe("100.01Cr"))
	assert.False(t, a.Consistent())
	distinct := a.Distinct()
	require.Len(t, distinct, 2)
	assert.True(t, dec("100.00").Equal(distinct[0]))
	assert.True(t, dec("100.01").Equal(distinct[1]))
}

func TestAnchor_Empty(t *testing.T) {
	a := NewClosing()
	_, ok := a.Value()
	assert.False(t, ok)
	assert.True(t, a.Consistent())
}
