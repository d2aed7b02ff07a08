package normalize_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/canonical"
	"github.com/warp/commission-engine/normalize"
)

// =============================================================================
// AMOUNT CLEANER TESTS
// =============================================================================

func TestCleanAmount_CurrencyStrings(t *testing.T) {
	// GIVEN: Amounts the way carriers actually print them
	// WHEN: Cleaned
	// THEN: Symbols and separators stripped, parentheses mean negative

	cases := []struct {
		in   string
		want string
	}{
		{"$1,234.50", "1234.5"},
		{"1234.50", "1234.5"},
		{"(100)", "-100"},
		{"($1,234.50)", "-1234.5"},
		{"$(1,234.50)", "-1234.5"},
		{"-$50.25", "-50.25"},
		{"  $99  ", "99"},
		{"0", "0"},
	}
	for _, tc := range cases {
		got, ok := normalize.CleanAmount(tc.in)
		assert.True(t, ok, "should parse %q", tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"%q: expected %s, got %s", tc.in, tc.want, got)
	}
}

func TestCleanAmount_MissingDefaultsToZero(t *testing.T) {
	// GIVEN: Missing input (nil or blank)
	// WHEN: Cleaned
	// THEN: Zero, and NOT flagged as an anomaly

	for _, in := range []any{nil, "", "   "} {
		got, ok := normalize.CleanAmount(in)
		assert.True(t, ok, "missing input %v is a clean zero, not an anomaly", in)
		assert.True(t, got.IsZero())
	}
}

func TestCleanAmount_UnparsableFlagged(t *testing.T) {
	// GIVEN: Values no cleaning pass can salvage
	// WHEN: Cleaned
	// THEN: Zero with ok=false so the caller can record the anomaly

	for _, in := range []any{"N/A", "--", struct{}{}} {
		got, ok := normalize.CleanAmount(in)
		assert.False(t, ok, "%v should be flagged", in)
		assert.True(t, got.IsZero())
	}
}

func TestCleanAmount_NumericPassthrough(t *testing.T) {
	got, ok := normalize.CleanAmount(float64(12.5))
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromFloat(12.5)))

	got, ok = normalize.CleanAmount(42)
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(42)))
}

func TestCleanAmount_NonFiniteFloats(t *testing.T) {
	// GIVEN: NaN and infinities
	// WHEN: Cleaned
	// THEN: Repaired to zero and flagged

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got, ok := normalize.CleanAmount(f)
		assert.False(t, ok)
		assert.True(t, got.IsZero())
	}
}

func TestCleanAmount_EmbeddedJunkFallback(t *testing.T) {
	// GIVEN: A value where only the fallback strip can recover a number
	// WHEN: Cleaned
	// THEN: Non-numeric characters dropped, parse retried once

	got, ok := normalize.CleanAmount("USD 12.50")
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("12.50")))
}

// =============================================================================
// DATE CANONICALIZER TESTS
// =============================================================================

func TestCleanDate_SupportedLayouts(t *testing.T) {
	// GIVEN: The four date layouts carriers use
	// WHEN: Cleaned
	// THEN: All canonicalize to the same day

	want := canonical.NewDate(2024, time.June, 15)
	for _, in := range []string{"2024-06-15", "06/15/2024", "15-06-2024", "2024/06/15"} {
		got := normalize.CleanDate(in)
		assert.True(t, got.Equal(want), "%q: expected %s, got %s", in, want, got)
	}
}

func TestCleanDate_Unparsable(t *testing.T) {
	// GIVEN: Values that match no supported layout
	// WHEN: Cleaned
	// THEN: Null date, never an error

	for _, in := range []any{"June 15th", "2024-13-01", "", nil, 42} {
		got := normalize.CleanDate(in)
		assert.False(t, got.Valid, "%v should yield the null date", in)
	}
}

func TestCleanDate_Passthrough(t *testing.T) {
	d := canonical.NewDate(2024, time.March, 1)
	assert.True(t, normalize.CleanDate(d).Equal(d))

	ts := time.Date(2024, time.March, 1, 14, 30, 0, 0, time.UTC)
	assert.True(t, normalize.CleanDate(ts).Equal(canonical.NewDate(2024, time.March, 1)),
		"time-of-day should be truncated")
}

// =============================================================================
// NAME CANONICALIZER TESTS
// =============================================================================

func TestCleanName_TitleCaseAndWhitespace(t *testing.T) {
	cases := []struct{ in, want string }{
		{"JOHN SMITH", "John Smith"},
		{"jane doe", "Jane Doe"},
		{"  mixed   CASE  name ", "Mixed Case Name"},
		{"o'brien", "O'brien"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalize.CleanName(tc.in))
	}
}

func TestCleanName_BlankBecomesSentinel(t *testing.T) {
	// GIVEN: Missing or blank agent names
	// WHEN: Cleaned
	// THEN: The Unknown Agent sentinel, so aggregation keeps the record

	for _, in := range []any{nil, "", "   ", 123} {
		assert.Equal(t, canonical.UnknownAgent, normalize.CleanName(in))
	}
}

func TestCleanOptionalName_BlankStaysEmpty(t *testing.T) {
	// Agency names may legitimately be absent; no sentinel.
	assert.Equal(t, "", normalize.CleanOptionalName(""))
	assert.Equal(t, "", normalize.CleanOptionalName(nil))
	assert.Equal(t, "Acme Insurance", normalize.CleanOptionalName("ACME insurance"))
}

// =============================================================================
// TRANSACTION-TYPE MAPPER TESTS
// =============================================================================

func TestMapTransactionType_ExactAndSynonym(t *testing.T) {
	cases := []struct{ in, want string }{
		{"New", normalize.TxNew},
		{"NEW", normalize.TxNew},
		{"renewal", normalize.TxRenewal},
		{"Renew", normalize.TxRenewal},
		{"cancel", normalize.TxCancellation},
		{"Termination", normalize.TxTermination},
		{"adj", normalize.TxAdjustment},
		{"Monthly Commission", normalize.TxCommission},
		{"Renewal Payment", normalize.TxRenewal},
		{"New Enrollment", normalize.TxNew},
		{"chargeback", normalize.TxOther},
		{"", normalize.TxOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalize.MapTransactionType(tc.in), "input %q", tc.in)
	}
}

func TestMapTransactionType_SpecificSynonymWins(t *testing.T) {
	// GIVEN: Labels containing both a specific and a generic synonym
	// WHEN: Mapped
	// THEN: The specific one wins ("renewal" contains "new" but maps to Renewal)

	assert.Equal(t, normalize.TxRenewal, normalize.MapTransactionType("plan renewal"))
	assert.Equal(t, normalize.TxCancellation, normalize.MapTransactionType("mid-year cancellation"))
}

func TestMapTransactionType_Idempotent(t *testing.T) {
	// Every vocabulary value must map to itself.
	for _, v := range []string{
		normalize.TxNew, normalize.TxRenewal, normalize.TxCancellation,
		normalize.TxTermination, normalize.TxAdjustment, normalize.TxBonus,
		normalize.TxCommission, normalize.TxReversal, normalize.TxCorrection,
	} {
		assert.Equal(t, v, normalize.MapTransactionType(v))
	}
	assert.Equal(t, normalize.TxOther, normalize.MapTransactionType(normalize.TxOther))
}

// =============================================================================
// IDENTIFIER CLEANER TESTS
// =============================================================================

func TestCleanIdentifier(t *testing.T) {
	assert.Equal(t, "A1234567", normalize.CleanIdentifier(" A-123.4567 "))
	assert.Equal(t, "MBI9XY", normalize.CleanIdentifier("MBI 9-XY"))
	assert.Equal(t, "", normalize.CleanIdentifier("---"))
	assert.Equal(t, "abc123", normalize.CleanIdentifier("abc123"))
}
