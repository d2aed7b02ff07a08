package normalize_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/canonical"
	"github.com/warp/commission-engine/normalize"
	"github.com/warp/commission-engine/rank"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func rec(agent string, amount string) canonical.Record {
	return canonical.Record{
		CarrierName:      "Centene",
		CommissionPeriod: "2024-06",
		AgentName:        agent,
		CommissionAmount: decimal.RequireFromString(amount),
		TransactionType:  "New",
	}
}

// =============================================================================
// PIPELINE TESTS
// =============================================================================

func TestPipeline_NormalizesFields(t *testing.T) {
	// GIVEN: A batch with raw casing and a carrier transaction label
	// WHEN: Normalized
	// THEN: Names title-cased, transaction types mapped, input untouched

	in := canonical.NewBatch([]canonical.Record{
		{
			CarrierName:      "Centene",
			CommissionPeriod: "2024-06",
			AgentName:        "JOHN SMITH",
			AgencyName:       "acme insurance LLC",
			MemberID:         "A-123 456",
			CommissionAmount: decimal.RequireFromString("100.50"),
			TransactionType:  "Renewal Payment",
		},
	})

	out, anomalies, err := normalize.Normalize(in)
	require.NoError(t, err)
	assert.Empty(t, anomalies)

	got := out.Records[0]
	assert.Equal(t, "John Smith", got.AgentName)
	assert.Equal(t, "Acme Insurance Llc", got.AgencyName)
	assert.Equal(t, "A123456", got.MemberID)
	assert.Equal(t, normalize.TxRenewal, got.TransactionType)

	// Caller's batch is never mutated.
	assert.Equal(t, "JOHN SMITH", in.Records[0].AgentName)
}

func TestPipeline_BlankAgentGetsSentinel(t *testing.T) {
	in := canonical.NewBatch([]canonical.Record{rec("   ", "10")})

	out, _, err := normalize.Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, canonical.UnknownAgent, out.Records[0].AgentName)
}

func TestPipeline_Idempotent(t *testing.T) {
	// GIVEN: A normalized batch
	// WHEN: Normalized again
	// THEN: Byte-for-byte identical output

	in := canonical.NewBatch([]canonical.Record{
		rec("  jane   DOE ", "1234.50"),
		rec("JOHN SMITH", "-10"),
		rec("", "0"),
	})

	once, _, err := normalize.Normalize(in)
	require.NoError(t, err)
	twice, _, err := normalize.Normalize(once)
	require.NoError(t, err)

	require.Equal(t, len(once.Records), len(twice.Records))
	for i := range once.Records {
		assert.Equal(t, once.Records[i], twice.Records[i])
	}
}

func TestPipeline_MissingRequiredColumnIsFatal(t *testing.T) {
	// GIVEN: A batch whose source frame never carried agent_name
	// WHEN: Normalized
	// THEN: SchemaError naming the column, and no partial output

	in := canonical.Batch{
		Columns: []string{
			canonical.ColCarrierName,
			canonical.ColCommissionPeriod,
			canonical.ColCommissionAmount,
		},
		Records: []canonical.Record{rec("John Smith", "10")},
	}

	out, _, err := normalize.Normalize(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, canonical.ErrMissingColumns))

	var schemaErr *canonical.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{canonical.ColAgentName}, schemaErr.Missing)
	assert.Empty(t, out.Records, "no partial output on schema error")
}

func TestPipeline_BlankRequiredValueIsAnomalyNotError(t *testing.T) {
	// GIVEN: The column exists but one record's value is blank
	// WHEN: Normalized
	// THEN: Succeeds, anomaly recorded

	r := rec("John Smith", "10")
	r.CarrierName = ""
	in := canonical.NewBatch([]canonical.Record{r})

	out, anomalies, err := normalize.Normalize(in)
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	require.Len(t, anomalies, 1)
	assert.Equal(t, canonical.ColCarrierName, anomalies[0].Field)
}

func TestPipeline_EmptyBatchPassesWithStandardColumns(t *testing.T) {
	out, anomalies, err := normalize.Normalize(canonical.NewBatch(nil))
	require.NoError(t, err)
	assert.Empty(t, out.Records)
	assert.Empty(t, anomalies)
}

// =============================================================================
// AGENT DEDUPLICATION TESTS
// =============================================================================

func TestPipeline_DedupeNames_RewritesClusterMembers(t *testing.T) {
	// GIVEN: The same agent as a person and as their LLC
	// WHEN: Normalized with DedupeNames on
	// THEN: Both records carry the cluster's canonical label

	in := canonical.NewBatch([]canonical.Record{
		rec("John Smith", "10"),
		rec("John Smith Llc", "20"),
		rec("Jane Doe", "30"),
	})

	p := normalize.NewPipeline(normalize.Options{DedupeNames: true})
	out, _, err := p.Normalize(in)
	require.NoError(t, err)

	assert.Equal(t, "John Smith", out.Records[0].AgentName)
	assert.Equal(t, "John Smith", out.Records[1].AgentName)
	assert.Equal(t, "Jane Doe", out.Records[2].AgentName)
}

// =============================================================================
// END-TO-END SCENARIO
// =============================================================================

func TestNormalizeThenRank_CrossCarrierAgent(t *testing.T) {
	// GIVEN: One agent appearing under two casings across two carriers,
	//        plus a second agent
	// WHEN: Normalized and ranked for the period
	// THEN: The casings collapse to one agent with summed totals

	mk := func(carrier, agent, amount string) canonical.Record {
		r := rec(agent, amount)
		r.CarrierName = carrier
		return r
	}
	in := canonical.NewBatch([]canonical.Record{
		mk("A", "john smith", "100"),
		mk("B", "JOHN SMITH", "50"),
		mk("A", "jane doe", "30"),
	})

	out, _, err := normalize.Normalize(in)
	require.NoError(t, err)

	entries := rank.New(out.Records).TopPerformers(2, "2024-06")
	require.Len(t, entries, 2)

	assert.Equal(t, "John Smith", entries[0].AgentName)
	assert.True(t, entries[0].TotalCommission.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, entries[0].AvgCommission.Equal(decimal.RequireFromString("75.00")))
	assert.Equal(t, 2, entries[0].TransactionCount)
	assert.Equal(t, "A, B", entries[0].Carriers)

	assert.Equal(t, "Jane Doe", entries[1].AgentName)
	assert.True(t, entries[1].TotalCommission.Equal(decimal.RequireFromString("30.00")))
}

func TestPipeline_DedupeNames_OffByDefault(t *testing.T) {
	in := canonical.NewBatch([]canonical.Record{
		rec("John Smith", "10"),
		rec("John Smith Llc", "20"),
	})

	out, _, err := normalize.Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", out.Records[0].AgentName)
	assert.Equal(t, "John Smith Llc", out.Records[1].AgentName)
}
