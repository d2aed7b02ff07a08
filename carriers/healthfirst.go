package carriers

import (
	"fmt"
	"log"
	"strings"

	"github.com/warp/commission-engine/canonical"
	"github.com/warp/commission-engine/normalize"
)

// Healthfirst adapts Healthfirst commission statements. Healthfirst rows
// sometimes carry the producer only at the agency level, so the agent name
// falls back from Producer Name to Producer Type before the sentinel.
type Healthfirst struct {
	filePath string
	period   string
}

// NewHealthfirst builds the Healthfirst adapter over a statement file.
func NewHealthfirst(filePath string) Adapter {
	return &Healthfirst{filePath: filePath}
}

func (h *Healthfirst) CarrierName() string { return "Healthfirst" }

// CommissionPeriod extracts the period from the statement filename once and
// caches it.
func (h *Healthfirst) CommissionPeriod() string {
	if h.period == "" {
		h.period = periodFromFilename(h.filePath, defaultPeriod)
	}
	return h.period
}

// Parse maps Healthfirst's columns onto canonical records.
func (h *Healthfirst) Parse() (canonical.Batch, error) {
	rows, err := readSheet(h.filePath)
	if err != nil {
		return canonical.Batch{}, err
	}

	records := make([]canonical.Record, 0, len(rows))
	badAmounts := 0
	for _, row := range rows {
		amount, ok := normalize.CleanAmount(row["Amount"])
		if !ok {
			badAmounts++
		}

		agent := normalize.CleanOptionalName(row["Producer Name"])
		if agent == "" {
			agent = normalize.CleanOptionalName(row["Producer Type"])
		}
		if agent == "" {
			agent = canonical.UnknownAgent
		}

		records = append(records, canonical.Record{
			CarrierName:       h.CarrierName(),
			CommissionPeriod:  h.CommissionPeriod(),
			AgentName:         agent,
			AgencyName:        "",
			MemberID:          strings.TrimSpace(row["Member ID"]),
			MemberName:        strings.TrimSpace(row["Member Name"]),
			PlanName:          strings.TrimSpace(row["Product"]),
			EnrollmentDate:    normalize.CleanDate(row["Member Effective Date"]),
			DisenrollmentDate: normalize.CleanDate(row["Disenrolled Date"]),
			CommissionAmount:  amount,
			TransactionType:   strings.TrimSpace(row["Enrollment Type"]),
			PolicyNumber:      "",
			EffectiveDate:     normalize.CleanDate(row["Member Effective Date"]),
			ProcessedDate:     canonical.Date{},
		})
	}
	if badAmounts > 0 {
		log.Printf("carriers: %s: %d unparsable amounts repaired to zero", h.CarrierName(), badAmounts)
	}
	if len(records) == 0 {
		return canonical.Batch{}, fmt.Errorf("%s %s: %w", h.CarrierName(), h.filePath, canonical.ErrEmptyBatch)
	}
	return canonical.NewBatch(records), nil
}
