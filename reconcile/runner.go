/*
Package reconcile orchestrates one end-to-end reconciliation run.

PURPOSE:
  Gluing layer between the pieces: build adapters from the configured
  sources, parse every statement, merge the batches, normalize, and persist
  the result as a new run. Both cmd/reconcile and the API's reconcile
  endpoint go through here so the two entry points can never drift apart.

FAILURE POLICY:
  A source that cannot be parsed fails the whole run - a report computed
  over a partial import would silently understate totals. Value-level
  problems inside a file were already repaired upstream and only surface
  here as the run's anomaly count.

SEE ALSO:
  - carriers/: Statement parsing
  - normalize/: Batch normalization
  - store/sqlite/: Run persistence
*/
package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/canonical"
	"github.com/warp/commission-engine/carriers"
	"github.com/warp/commission-engine/config"
	"github.com/warp/commission-engine/normalize"
	"github.com/warp/commission-engine/store/sqlite"
)

// Runner executes reconciliation runs against a store.
type Runner struct {
	cfg   *config.Config
	store *sqlite.Store

	// Now supplies run timestamps; swap it in tests for determinism.
	Now func() time.Time
}

// NewRunner builds a runner over a config and store.
func NewRunner(cfg *config.Config, store *sqlite.Store) *Runner {
	return &Runner{cfg: cfg, store: store, Now: time.Now}
}

// Run parses every configured source, normalizes the merged batch, and
// persists it as a new run. Returns the run metadata and the normalized
// batch.
func (r *Runner) Run(ctx context.Context) (sqlite.Run, canonical.Batch, error) {
	if len(r.cfg.Sources) == 0 {
		return sqlite.Run{}, canonical.Batch{}, fmt.Errorf("no sources configured")
	}

	batches := make([]canonical.Batch, 0, len(r.cfg.Sources))
	for _, src := range r.cfg.Sources {
		adapter, err := carriers.New(src.Carrier, src.File)
		if err != nil {
			return sqlite.Run{}, canonical.Batch{}, err
		}

		batch, err := adapter.Parse()
		if err != nil {
			return sqlite.Run{}, canonical.Batch{}, fmt.Errorf("parse %s: %w", src.File, err)
		}
		log.Printf("reconcile: %s: %d records from %s",
			adapter.CarrierName(), len(batch.Records), src.File)
		batches = append(batches, batch)
	}

	merged := canonical.Merge(batches...)

	pipeline := normalize.NewPipeline(normalize.Options{
		DedupeNames:   r.cfg.DedupeNames,
		NameThreshold: r.cfg.NameThreshold,
	})
	normalized, anomalies, err := pipeline.Normalize(merged)
	if err != nil {
		return sqlite.Run{}, canonical.Batch{}, fmt.Errorf("normalize: %w", err)
	}

	total := decimal.Zero
	for _, rec := range normalized.Records {
		total = total.Add(rec.CommissionAmount)
	}

	run := sqlite.Run{
		ID:              uuid.NewString(),
		Period:          r.cfg.Period,
		SourceCount:     len(r.cfg.Sources),
		RecordCount:     len(normalized.Records),
		TotalCommission: total,
		AnomalyCount:    len(anomalies),
		CreatedAt:       r.Now().UTC(),
	}
	if err := r.store.SaveRun(ctx, run, normalized.Records); err != nil {
		return sqlite.Run{}, canonical.Batch{}, fmt.Errorf("save run: %w", err)
	}

	log.Printf("reconcile: run %s saved: %d records, total %s, %d anomalies",
		run.ID, run.RecordCount, run.TotalCommission.StringFixed(2), run.AnomalyCount)
	return run, normalized, nil
}
