/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model (decimal amounts, nullable dates) from the
  external API contract: amounts render as plain JSON numbers rounded the
  way reports round them, timestamps as RFC3339 strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - rank/: The domain shapes these mirror
*/
package api

import (
	"time"

	"github.com/warp/commission-engine/rank"
	"github.com/warp/commission-engine/store/sqlite"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RunDTO represents a reconciliation run in API responses.
type RunDTO struct {
	ID              string  `json:"id"`
	Period          string  `json:"period"`
	SourceCount     int     `json:"source_count"`
	RecordCount     int     `json:"record_count"`
	TotalCommission float64 `json:"total_commission"`
	AnomalyCount    int     `json:"anomaly_count"`
	CreatedAt       string  `json:"created_at"`
}

// EntryDTO is one leaderboard row.
type EntryDTO struct {
	AgentName        string  `json:"agent_name"`
	TotalCommission  float64 `json:"total_commission"`
	AvgCommission    float64 `json:"avg_commission"`
	TransactionCount int     `json:"transaction_count"`
	Carriers         string  `json:"carriers"`
}

// SummaryDTO is the period summary.
type SummaryDTO struct {
	Period            string   `json:"period"`
	TotalCommission   float64  `json:"total_commission"`
	TotalTransactions int      `json:"total_transactions"`
	UniqueAgents      int      `json:"unique_agents"`
	UniqueMembers     int      `json:"unique_members"`
	Carriers          []string `json:"carriers"`
	GeneratedAt       string   `json:"generated_at"`
}

// CarrierStatsDTO is one carrier's period aggregate.
type CarrierStatsDTO struct {
	CarrierName      string  `json:"carrier_name"`
	TotalCommission  float64 `json:"total_commission"`
	TransactionCount int     `json:"transaction_count"`
	AvgCommission    float64 `json:"avg_commission"`
	UniqueAgents     int     `json:"unique_agents"`
	UniqueMembers    int     `json:"unique_members"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRunDTO(run sqlite.Run) RunDTO {
	return RunDTO{
		ID:              run.ID,
		Period:          run.Period,
		SourceCount:     run.SourceCount,
		RecordCount:     run.RecordCount,
		TotalCommission: run.TotalCommission.InexactFloat64(),
		AnomalyCount:    run.AnomalyCount,
		CreatedAt:       run.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toRunDTOs(runs []sqlite.Run) []RunDTO {
	dtos := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toRunDTO(run))
	}
	return dtos
}

func toEntryDTOs(entries []rank.Entry) []EntryDTO {
	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, EntryDTO{
			AgentName:        e.AgentName,
			TotalCommission:  e.TotalCommission.InexactFloat64(),
			AvgCommission:    e.AvgCommission.InexactFloat64(),
			TransactionCount: e.TransactionCount,
			Carriers:         e.Carriers,
		})
	}
	return dtos
}

func toSummaryDTO(s rank.Summary) SummaryDTO {
	return SummaryDTO{
		Period:            s.Period,
		TotalCommission:   s.TotalCommission.InexactFloat64(),
		TotalTransactions: s.TotalTransactions,
		UniqueAgents:      s.UniqueAgents,
		UniqueMembers:     s.UniqueMembers,
		Carriers:          s.Carriers,
		GeneratedAt:       s.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

func toCarrierStatsDTOs(stats []rank.CarrierStats) []CarrierStatsDTO {
	dtos := make([]CarrierStatsDTO, 0, len(stats))
	for _, cs := range stats {
		dtos = append(dtos, CarrierStatsDTO{
			CarrierName:      cs.CarrierName,
			TotalCommission:  cs.TotalCommission.InexactFloat64(),
			TransactionCount: cs.TransactionCount,
			AvgCommission:    cs.AvgCommission.InexactFloat64(),
			UniqueAgents:     cs.UniqueAgents,
			UniqueMembers:    cs.UniqueMembers,
		})
	}
	return dtos
}
