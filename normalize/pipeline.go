/*
pipeline.go - Batch normalization in a fixed stage order

PURPOSE:
  The Pipeline turns a merged, possibly messy batch of canonical records
  into one that satisfies every invariant the ranking aggregator relies on.
  Stages run in a fixed order over the whole batch:

    dates -> amounts -> names (agent, then agency) -> transaction types
          -> identifiers -> required-column validation

CONTRACT:
  - The caller's batch is never mutated: the pipeline clones its input and
    returns a fresh batch.
  - Idempotent: normalizing an already-normalized batch changes nothing.
  - Lenient on values: malformed values are repaired with defaults and
    recorded as anomalies, never returned as errors.
  - Strict on schema: a missing required column aborts with a SchemaError
    and no partial output.
  - Stateless across invocations.

AGENT DEDUPLICATION:
  With Options.DedupeNames set, the name stage additionally groups agent
  names through the match engine and rewrites each to its cluster's
  canonical label. The grouping is greedy and order-dependent (see package
  match); it is off by default.

SEE ALSO:
  - fields.go: The individual field transforms
  - canonical/errors.go: SchemaError and Anomaly
*/
package normalize

import (
	"log"

	"github.com/warp/commission-engine/canonical"
	"github.com/warp/commission-engine/match"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options tunes optional pipeline behavior. The zero value is the plain,
// fully deterministic pipeline.
type Options struct {
	// DedupeNames enables agent-name clustering through the match engine.
	DedupeNames bool

	// NameThreshold is the similarity cutoff for clustering.
	// Zero means match.DefaultThreshold.
	NameThreshold float64
}

// Pipeline applies the field normalizers to a batch in a fixed order and
// enforces the required-column invariant. Stateless across invocations.
type Pipeline struct {
	opts Options
}

// NewPipeline builds a pipeline with the given options.
func NewPipeline(opts Options) *Pipeline {
	if opts.NameThreshold == 0 {
		opts.NameThreshold = match.DefaultThreshold
	}
	return &Pipeline{opts: opts}
}

// Normalize runs the default pipeline over a batch.
func Normalize(batch canonical.Batch) (canonical.Batch, []canonical.Anomaly, error) {
	return NewPipeline(Options{}).Normalize(batch)
}

// =============================================================================
// PIPELINE
// =============================================================================

// Normalize clones the input, applies every stage, and returns the
// normalized batch together with the value anomalies repaired along the
// way. A missing required column yields a *canonical.SchemaError and no
// partial output.
func (p *Pipeline) Normalize(batch canonical.Batch) (canonical.Batch, []canonical.Anomaly, error) {
	out := batch.Clone()
	var anomalies []canonical.Anomaly

	p.normalizeDates(&out)
	p.normalizeAmounts(&out)
	p.normalizeNames(&out)
	p.normalizeTransactionTypes(&out)
	p.cleanIdentifiers(&out)

	anomalies = append(anomalies, p.validateValues(&out)...)
	if err := p.validateColumns(out); err != nil {
		return canonical.Batch{}, nil, err
	}

	for _, a := range anomalies {
		log.Printf("normalize: repaired %s", a)
	}
	return out, anomalies, nil
}

// normalizeDates re-canonicalizes every date field. Dates set by adapters
// are already canonical; hand-built records get the same treatment.
func (p *Pipeline) normalizeDates(batch *canonical.Batch) {
	for i := range batch.Records {
		rec := &batch.Records[i]
		rec.EnrollmentDate = CleanDate(rec.EnrollmentDate)
		rec.DisenrollmentDate = CleanDate(rec.DisenrollmentDate)
		rec.EffectiveDate = CleanDate(rec.EffectiveDate)
		rec.ProcessedDate = CleanDate(rec.ProcessedDate)
	}
}

// normalizeAmounts upholds the finite, non-null amount invariant. Amounts
// are decimal by construction, so a missing value is already the zero
// amount; the pass keeps hand-built records on the same footing as
// adapter output.
func (p *Pipeline) normalizeAmounts(batch *canonical.Batch) {
	for i := range batch.Records {
		amt, _ := CleanAmount(batch.Records[i].CommissionAmount)
		batch.Records[i].CommissionAmount = amt
	}
}

// normalizeNames canonicalizes agent names (blank falls back to the
// UnknownAgent sentinel) and agency names (blank stays empty), then
// optionally rewrites agents to their similarity-cluster labels.
func (p *Pipeline) normalizeNames(batch *canonical.Batch) {
	for i := range batch.Records {
		rec := &batch.Records[i]
		rec.AgentName = CleanName(rec.AgentName)
		rec.AgencyName = CleanOptionalName(rec.AgencyName)
	}

	if p.opts.DedupeNames {
		p.dedupeAgents(batch)
	}
}

// dedupeAgents groups distinct agent names (first-seen order) and rewrites
// every record to its cluster's canonical label.
func (p *Pipeline) dedupeAgents(batch *canonical.Batch) {
	var names []string
	seen := make(map[string]bool)
	for _, rec := range batch.Records {
		if !seen[rec.AgentName] {
			seen[rec.AgentName] = true
			names = append(names, rec.AgentName)
		}
	}

	rename := make(map[string]string)
	for label, members := range match.Group(names, p.opts.NameThreshold) {
		for _, member := range members {
			rename[member] = label
		}
	}
	for i := range batch.Records {
		if label, found := rename[batch.Records[i].AgentName]; found && label != "" {
			batch.Records[i].AgentName = label
		}
	}
}

func (p *Pipeline) normalizeTransactionTypes(batch *canonical.Batch) {
	for i := range batch.Records {
		batch.Records[i].TransactionType = MapTransactionType(batch.Records[i].TransactionType)
	}
}

// cleanIdentifiers strips member IDs down to alphanumerics. Policy numbers
// stay free text.
func (p *Pipeline) cleanIdentifiers(batch *canonical.Batch) {
	for i := range batch.Records {
		batch.Records[i].MemberID = CleanIdentifier(batch.Records[i].MemberID)
	}
}

// validateValues records (but never raises) anomalies for required values
// that are blank at the record level.
func (p *Pipeline) validateValues(batch *canonical.Batch) []canonical.Anomaly {
	var anomalies []canonical.Anomaly
	for i := range batch.Records {
		rec := &batch.Records[i]
		if rec.CarrierName == "" {
			anomalies = append(anomalies, canonical.Anomaly{
				Field: canonical.ColCarrierName, Reason: "blank carrier on record",
			})
		}
		if rec.CommissionPeriod == "" {
			anomalies = append(anomalies, canonical.Anomaly{
				Field: canonical.ColCommissionPeriod, Reason: "blank period on record",
			})
		}
	}
	return anomalies
}

// validateColumns is the final stage: a required column absent from the
// batch is fatal.
func (p *Pipeline) validateColumns(batch canonical.Batch) error {
	if missing := batch.MissingRequired(); len(missing) > 0 {
		return &canonical.SchemaError{Missing: missing}
	}
	return nil
}
