package carriers

import (
	"fmt"
	"log"
	"strings"

	"github.com/warp/commission-engine/canonical"
	"github.com/warp/commission-engine/normalize"
)

// Centene adapts Centene commission statements. Centene files carry broker
// rows keyed by Medicare beneficiary identifiers, with the payment type in
// its own column.
type Centene struct {
	filePath string
	period   string
}

// NewCentene builds the Centene adapter over a statement file.
func NewCentene(filePath string) Adapter {
	return &Centene{filePath: filePath}
}

func (c *Centene) CarrierName() string { return "Centene" }

// CommissionPeriod extracts the period from the statement filename once and
// caches it.
func (c *Centene) CommissionPeriod() string {
	if c.period == "" {
		c.period = periodFromFilename(c.filePath, defaultPeriod)
	}
	return c.period
}

// Parse maps Centene's columns onto canonical records. Unparsable amounts
// are repaired to zero with a logged warning; the row itself survives.
func (c *Centene) Parse() (canonical.Batch, error) {
	rows, err := readSheet(c.filePath)
	if err != nil {
		return canonical.Batch{}, err
	}

	records := make([]canonical.Record, 0, len(rows))
	badAmounts := 0
	for _, row := range rows {
		amount, ok := normalize.CleanAmount(row["Payment Amount"])
		if !ok {
			badAmounts++
		}
		records = append(records, canonical.Record{
			CarrierName:       c.CarrierName(),
			CommissionPeriod:  c.CommissionPeriod(),
			AgentName:         strings.TrimSpace(row["Writing Broker Name"]),
			AgencyName:        strings.TrimSpace(row["Delta Care CORPORATION"]),
			MemberID:          strings.TrimSpace(row["Medicare Beneficiary Identifier (MBI)"]),
			MemberName:        strings.TrimSpace(row["Member Name"]),
			PlanName:          strings.TrimSpace(row["Plan Plan Type"]),
			EnrollmentDate:    normalize.CleanDate(row["Effective Date"]),
			DisenrollmentDate: canonical.Date{},
			CommissionAmount:  amount,
			TransactionType:   strings.TrimSpace(row["Payment Type"]),
			PolicyNumber:      strings.TrimSpace(row["Policy State"]),
			EffectiveDate:     normalize.CleanDate(row["Effective Date"]),
			ProcessedDate:     canonical.Date{},
		})
	}
	if badAmounts > 0 {
		log.Printf("carriers: %s: %d unparsable payment amounts repaired to zero", c.CarrierName(), badAmounts)
	}
	if len(records) == 0 {
		return canonical.Batch{}, fmt.Errorf("%s %s: %w", c.CarrierName(), c.filePath, canonical.ErrEmptyBatch)
	}
	return canonical.NewBatch(records), nil
}
