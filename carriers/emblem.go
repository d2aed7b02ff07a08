package carriers

import (
	"fmt"
	"log"
	"strings"

	"github.com/warp/commission-engine/canonical"
	"github.com/warp/commission-engine/normalize"
)

// Emblem adapts EmblemHealth commission statements. Emblem splits member
// names into first/last columns and carries no transaction type of its own,
// so every row is stamped as a plain commission payment.
type Emblem struct {
	filePath string
	period   string
}

// NewEmblem builds the Emblem adapter over a statement file.
func NewEmblem(filePath string) Adapter {
	return &Emblem{filePath: filePath}
}

func (e *Emblem) CarrierName() string { return "Emblem" }

// CommissionPeriod extracts the period from the statement filename once and
// caches it.
func (e *Emblem) CommissionPeriod() string {
	if e.period == "" {
		e.period = periodFromFilename(e.filePath, defaultPeriod)
	}
	return e.period
}

// Parse maps Emblem's columns onto canonical records.
func (e *Emblem) Parse() (canonical.Batch, error) {
	rows, err := readSheet(e.filePath)
	if err != nil {
		return canonical.Batch{}, err
	}

	records := make([]canonical.Record, 0, len(rows))
	badAmounts := 0
	for _, row := range rows {
		amount, ok := normalize.CleanAmount(row["Payment"])
		if !ok {
			badAmounts++
		}

		memberName := strings.TrimSpace(strings.Join([]string{
			strings.TrimSpace(row["Member First Name"]),
			strings.TrimSpace(row["Member Last Name"]),
		}, " "))

		records = append(records, canonical.Record{
			CarrierName:       e.CarrierName(),
			CommissionPeriod:  e.CommissionPeriod(),
			AgentName:         strings.TrimSpace(row["Rep Name"]),
			AgencyName:        strings.TrimSpace(row["Payee Name"]),
			MemberID:          strings.TrimSpace(row["Member ID"]),
			MemberName:        memberName,
			PlanName:          strings.TrimSpace(row["Plan"]),
			EnrollmentDate:    normalize.CleanDate(row["Effective Date"]),
			DisenrollmentDate: normalize.CleanDate(row["Term Date"]),
			CommissionAmount:  amount,
			TransactionType:   normalize.TxCommission,
			PolicyNumber:      strings.TrimSpace(row["Member HIC"]),
			EffectiveDate:     normalize.CleanDate(row["Effective Date"]),
			ProcessedDate:     canonical.Date{},
		})
	}
	if badAmounts > 0 {
		log.Printf("carriers: %s: %d unparsable payments repaired to zero", e.CarrierName(), badAmounts)
	}
	if len(records) == 0 {
		return canonical.Batch{}, fmt.Errorf("%s %s: %w", e.CarrierName(), e.filePath, canonical.ErrEmptyBatch)
	}
	return canonical.NewBatch(records), nil
}
