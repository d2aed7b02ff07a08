/*
Package canonical defines the shared record shape all carrier adapters emit.

PURPOSE:
  This package contains the canonical commission record - the single data
  shape the rest of the system operates on. Every carrier publishes its
  statements in a different spreadsheet schema; adapters translate each raw
  row into one Record, and from that point on no component ever looks at a
  carrier-specific column again.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: One reconciled commission transaction
  - Batch:  A set of Records plus the columns present in the source frame
  - Column constants: The standard column vocabulary

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for commission amounts to avoid
     floating-point errors
  2. Nullability: Dates are a Date value type with an explicit Valid flag,
     never a magic zero time
  3. Copy semantics: Batches are cloned before mutation so callers never
     see their input aliased

USAGE:
  batch := canonical.NewBatch(records)
  if missing := batch.MissingRequired(); len(missing) > 0 {
      return &canonical.SchemaError{Missing: missing}
  }

SEE ALSO:
  - date.go: Nullable ISO date type
  - errors.go: Error taxonomy (schema errors, consistency faults, anomalies)
  - normalize/: Pipeline that enforces this package's invariants
*/
package canonical

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// COLUMNS - Standard column vocabulary
// =============================================================================

const (
	ColCarrierName       = "carrier_name"
	ColCommissionPeriod  = "commission_period"
	ColAgentName         = "agent_name"
	ColAgencyName        = "agency_name"
	ColMemberID          = "member_id"
	ColMemberName        = "member_name"
	ColPlanName          = "plan_name"
	ColEnrollmentDate    = "enrollment_date"
	ColDisenrollmentDate = "disenrollment_date"
	ColCommissionAmount  = "commission_amount"
	ColTransactionType   = "transaction_type"
	ColPolicyNumber      = "policy_number"
	ColEffectiveDate     = "effective_date"
	ColProcessedDate     = "processed_date"
)

// StandardColumns returns the full canonical column set, in presentation order.
func StandardColumns() []string {
	return []string{
		ColCarrierName,
		ColCommissionPeriod,
		ColAgentName,
		ColAgencyName,
		ColMemberID,
		ColMemberName,
		ColPlanName,
		ColEnrollmentDate,
		ColDisenrollmentDate,
		ColCommissionAmount,
		ColTransactionType,
		ColPolicyNumber,
		ColEffectiveDate,
		ColProcessedDate,
	}
}

// RequiredColumns returns the columns every batch must carry before it may
// leave the normalization pipeline.
func RequiredColumns() []string {
	return []string{
		ColCarrierName,
		ColCommissionPeriod,
		ColAgentName,
		ColCommissionAmount,
	}
}

// UnknownAgent is the sentinel agent name substituted for blank or missing
// names so that aggregation never drops a record for lack of an agent key.
const UnknownAgent = "Unknown Agent"

// =============================================================================
// RECORD - One reconciled commission transaction
// =============================================================================

// Record is the canonical commission record. Adapters create it from one raw
// source row; the normalization pipeline canonicalizes it field by field; the
// ranking aggregator only ever reads it.
type Record struct {
	CarrierName       string          `json:"carrier_name"`
	CommissionPeriod  string          `json:"commission_period"` // YYYY-MM
	AgentName         string          `json:"agent_name"`
	AgencyName        string          `json:"agency_name"`
	MemberID          string          `json:"member_id"`
	MemberName        string          `json:"member_name"`
	PlanName          string          `json:"plan_name"`
	EnrollmentDate    Date            `json:"enrollment_date"`
	DisenrollmentDate Date            `json:"disenrollment_date"`
	CommissionAmount  decimal.Decimal `json:"commission_amount"`
	TransactionType   string          `json:"transaction_type"`
	PolicyNumber      string          `json:"policy_number"`
	EffectiveDate     Date            `json:"effective_date"`
	ProcessedDate     Date            `json:"processed_date"`
}

// =============================================================================
// BATCH - Records plus source column set
// =============================================================================

// Batch couples a slice of Records with the set of columns that were present
// in the source frame. Schema validation distinguishes a column that is
// absent entirely (fatal) from a value that is merely blank (repaired), so
// the column set must travel with the records.
type Batch struct {
	Columns []string
	Records []Record
}

// NewBatch builds a batch carrying the full standard column set.
func NewBatch(records []Record) Batch {
	return Batch{Columns: StandardColumns(), Records: records}
}

// HasColumn reports whether the batch's source frame carried the column.
func (b Batch) HasColumn(col string) bool {
	for _, c := range b.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// MissingRequired returns the required columns absent from the batch, in
// RequiredColumns order. Empty means the batch is schema-complete.
func (b Batch) MissingRequired() []string {
	var missing []string
	for _, col := range RequiredColumns() {
		if !b.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Clone returns a deep copy. The normalization pipeline mutates its copy,
// never the caller's batch.
func (b Batch) Clone() Batch {
	out := Batch{
		Columns: make([]string, len(b.Columns)),
		Records: make([]Record, len(b.Records)),
	}
	copy(out.Columns, b.Columns)
	copy(out.Records, b.Records)
	return out
}

// Merge concatenates batches into one. The column set is the union of the
// inputs' columns, preserving first-seen order.
func Merge(batches ...Batch) Batch {
	var out Batch
	seen := make(map[string]bool)
	for _, b := range batches {
		for _, col := range b.Columns {
			if !seen[col] {
				seen[col] = true
				out.Columns = append(out.Columns, col)
			}
		}
		out.Records = append(out.Records, b.Records...)
	}
	return out
}
