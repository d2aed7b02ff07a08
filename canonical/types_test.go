package canonical_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/canonical"
)

// =============================================================================
// BATCH TESTS
// =============================================================================

func TestNewBatch_CarriesStandardColumns(t *testing.T) {
	b := canonical.NewBatch(nil)
	assert.Equal(t, canonical.StandardColumns(), b.Columns)
	assert.Empty(t, b.MissingRequired())
}

func TestBatch_MissingRequired(t *testing.T) {
	// GIVEN: A batch whose source frame lacked two required columns
	// WHEN: Checked
	// THEN: The missing ones, in required-column order

	b := canonical.Batch{Columns: []string{
		canonical.ColCarrierName,
		canonical.ColCommissionAmount,
	}}
	assert.Equal(t,
		[]string{canonical.ColCommissionPeriod, canonical.ColAgentName},
		b.MissingRequired())
}

func TestBatch_CloneIsDeep(t *testing.T) {
	b := canonical.NewBatch([]canonical.Record{
		{AgentName: "John Smith", CommissionAmount: decimal.NewFromInt(10)},
	})

	clone := b.Clone()
	clone.Records[0].AgentName = "Changed"
	clone.Columns[0] = "changed"

	assert.Equal(t, "John Smith", b.Records[0].AgentName)
	assert.Equal(t, canonical.ColCarrierName, b.Columns[0])
}

func TestMerge_UnionsColumnsAndConcatenatesRecords(t *testing.T) {
	// GIVEN: Two batches with overlapping column sets
	// WHEN: Merged
	// THEN: Columns unioned in first-seen order, records concatenated

	a := canonical.Batch{
		Columns: []string{canonical.ColCarrierName, canonical.ColAgentName},
		Records: []canonical.Record{{AgentName: "A"}},
	}
	b := canonical.Batch{
		Columns: []string{canonical.ColAgentName, canonical.ColCommissionAmount},
		Records: []canonical.Record{{AgentName: "B"}, {AgentName: "C"}},
	}

	merged := canonical.Merge(a, b)
	assert.Equal(t, []string{
		canonical.ColCarrierName,
		canonical.ColAgentName,
		canonical.ColCommissionAmount,
	}, merged.Columns)
	require.Len(t, merged.Records, 3)
	assert.Equal(t, "A", merged.Records[0].AgentName)
	assert.Equal(t, "C", merged.Records[2].AgentName)
}

// =============================================================================
// DATE TESTS
// =============================================================================

func TestDate_ZeroValueIsNull(t *testing.T) {
	var d canonical.Date
	assert.False(t, d.Valid)
	assert.Equal(t, "", d.String())
}

func TestDateOf_TruncatesToDay(t *testing.T) {
	d := canonical.DateOf(time.Date(2024, time.June, 15, 14, 30, 45, 0, time.UTC))
	assert.True(t, d.Equal(canonical.NewDate(2024, time.June, 15)))
	assert.Equal(t, "2024-06-15", d.String())
}

func TestDate_Equal(t *testing.T) {
	assert.True(t, canonical.Date{}.Equal(canonical.Date{}))
	assert.True(t, canonical.NewDate(2024, time.June, 1).Equal(canonical.NewDate(2024, time.June, 1)))
	assert.False(t, canonical.NewDate(2024, time.June, 1).Equal(canonical.Date{}))
	assert.False(t, canonical.NewDate(2024, time.June, 1).Equal(canonical.NewDate(2024, time.June, 2)))
}

func TestDate_JSONRoundTrip(t *testing.T) {
	// Valid dates render as "YYYY-MM-DD", null dates as JSON null.
	valid := canonical.NewDate(2024, time.June, 15)
	data, err := json.Marshal(valid)
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-15"`, string(data))

	var back canonical.Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(valid))

	data, err = json.Marshal(canonical.Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var null canonical.Date
	require.NoError(t, json.Unmarshal([]byte("null"), &null))
	assert.False(t, null.Valid)
}

// =============================================================================
// ERROR TAXONOMY TESTS
// =============================================================================

func TestSchemaError_UnwrapsToSentinel(t *testing.T) {
	err := &canonical.SchemaError{Missing: []string{canonical.ColAgentName}}
	assert.ErrorIs(t, err, canonical.ErrMissingColumns)
	assert.Contains(t, err.Error(), canonical.ColAgentName)
}
