/*
errors.go - Centralized error taxonomy for the reconciliation core

PURPOSE:
  All error types in one place for consistency and discoverability.
  The taxonomy distinguishes three severities:

  1. Schema errors  - A required column is absent from an input batch.
                      Fatal: propagated to the caller, no partial output.
  2. Value anomalies - A single field value is malformed. Always repaired
                      locally with a documented default and recorded; never
                      returned as an error.
  3. Consistency faults - An internal post-condition is violated. A logic
                      bug, not bad input: raised as a panic rather than
                      silently corrected.

USAGE:
  Callers match schema errors with errors.Is/errors.As:

    if errors.Is(err, canonical.ErrMissingColumns) {
        // reject the batch, nothing was normalized
    }

SEE ALSO:
  - normalize/pipeline.go: Raises schema errors, records anomalies
  - rank/aggregator.go: Panics with ConsistencyFault on sort violations
*/
package canonical

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingColumns is returned when a batch lacks required columns.
	ErrMissingColumns = errors.New("missing required columns")

	// ErrEmptyBatch is returned when an adapter produces no records at all.
	ErrEmptyBatch = errors.New("batch contains no records")

	// ErrRunNotFound is returned when a referenced reconciliation run
	// doesn't exist in the store.
	ErrRunNotFound = errors.New("reconciliation run not found")

	// ErrUnknownCarrier is returned when a carrier identifier has no
	// registered adapter.
	ErrUnknownCarrier = errors.New("unknown carrier")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SchemaError reports required columns absent from an input batch at the
// pipeline entry. It is fatal: the pipeline returns it without producing
// any partial output.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrMissingColumns
}

// ConsistencyFault is the panic value raised when an internal post-condition
// is violated (e.g., a leaderboard that is not sorted). It indicates a logic
// bug, never bad input, so it is deliberately not an error return.
type ConsistencyFault struct {
	Check  string
	Detail string
}

func (f ConsistencyFault) Error() string {
	return fmt.Sprintf("consistency fault in %s: %s", f.Check, f.Detail)
}

// =============================================================================
// VALUE ANOMALIES - Recorded, never raised
// =============================================================================

// Anomaly records one malformed field value that was repaired with a default.
type Anomaly struct {
	Field  string
	Value  string
	Reason string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s: %q (%s)", a.Field, a.Value, a.Reason)
}
