/*
Package carriers translates carrier-specific spreadsheets into canonical records.

PURPOSE:
  Each carrier publishes commission statements in its own spreadsheet
  schema. This package holds one adapter per carrier, each mapping that
  carrier's raw columns onto the canonical record shape, plus a registry
  that builds adapters from a carrier identifier. The carrier set is fixed
  and small, so the registry is a closed map, not a plugin mechanism.

ADAPTER CONTRACT:
  - CarrierName() is a stable, non-empty identifier stamped on every record.
  - CommissionPeriod() is the YYYY-MM period the statement covers, extracted
    once from the source filename and cached.
  - Parse() reads the spreadsheet and emits a Batch conforming to the
    canonical shape. A malformed row is skipped or repaired, never fatal for
    the whole file; a file that yields no records at all is an error.

  Nothing outside this package ever inspects a carrier-specific column.

USAGE:
  adapter, err := carriers.New("centene", "data/Centene 06.2024 Commission.xlsx")
  batch, err := adapter.Parse()

SEE ALSO:
  - sheet.go: Shared spreadsheet reading and filename-period extraction
  - centene.go, emblem.go, healthfirst.go: The concrete adapters
*/
package carriers

import (
	"fmt"
	"sort"

	"github.com/warp/commission-engine/canonical"
)

// =============================================================================
// ADAPTER - One carrier's statement translator
// =============================================================================

// Adapter turns one carrier's raw statement into canonical records.
type Adapter interface {
	// CarrierName returns the carrier identifier stamped on every record.
	CarrierName() string

	// CommissionPeriod returns the YYYY-MM period the statement covers.
	CommissionPeriod() string

	// Parse reads the source file and emits the canonical batch.
	Parse() (canonical.Batch, error)
}

// =============================================================================
// REGISTRY - Carrier identifier to adapter constructor
// =============================================================================

// Constructor builds an adapter over a source file.
type Constructor func(filePath string) Adapter

var registry = map[string]Constructor{
	"centene":     NewCentene,
	"emblem":      NewEmblem,
	"healthfirst": NewHealthfirst,
}

// New builds the adapter registered under the carrier identifier.
func New(carrier, filePath string) (Adapter, error) {
	build, found := registry[carrier]
	if !found {
		return nil, fmt.Errorf("%w: %q", canonical.ErrUnknownCarrier, carrier)
	}
	return build(filePath), nil
}

// Carriers lists the registered carrier identifiers, sorted.
func Carriers() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
