/*
Package rank builds period leaderboards and report aggregates.

PURPOSE:
  Given a normalized batch and a YYYY-MM reporting period, this package
  ranks agents by total commission earned and produces the supporting
  aggregates a full report needs: a period summary and per-carrier
  statistics. It is a pure read over its input: records are never mutated
  and results are recomputed on every call, never cached.

RANKING RULES:
  - Filter to the requested period, group by agent name.
  - total and average commission round to two decimals, half away from zero.
  - Sort by total descending; equal totals tie-break by agent name
    ascending so output is deterministic regardless of input order.
  - Fewer than n agents: pad with zero-valued Agent_{k} placeholders until
    exactly n entries exist. Placeholders only fill the deficit; real data
    is never displaced.
  - Exactly n entries come back, totals non-increasing. A violation of that
    post-condition is a logic bug and panics with a ConsistencyFault.

SEE ALSO:
  - canonical/errors.go: ConsistencyFault
  - normalize/: Produces the batches this package reads
*/
package rank

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/canonical"
)

// =============================================================================
// RESULT SHAPES
// =============================================================================

// Entry is one leaderboard row: an agent's aggregate for one period.
// Recomputed on every call, never cached.
type Entry struct {
	AgentName        string          `json:"agent_name"`
	TotalCommission  decimal.Decimal `json:"total_commission"`
	AvgCommission    decimal.Decimal `json:"avg_commission"`
	TransactionCount int             `json:"transaction_count"`
	Carriers         string          `json:"carriers"`
}

// Summary describes one reporting period as a whole.
type Summary struct {
	Period            string          `json:"period"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	TotalTransactions int             `json:"total_transactions"`
	UniqueAgents      int             `json:"unique_agents"`
	UniqueMembers     int             `json:"unique_members"`
	Carriers          []string        `json:"carriers"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// CarrierStats is one carrier's aggregate for one period.
type CarrierStats struct {
	CarrierName      string          `json:"carrier_name"`
	TotalCommission  decimal.Decimal `json:"total_commission"`
	TransactionCount int             `json:"transaction_count"`
	AvgCommission    decimal.Decimal `json:"avg_commission"`
	UniqueAgents     int             `json:"unique_agents"`
	UniqueMembers    int             `json:"unique_members"`
}

// PerformanceReport bundles everything a rendered report needs.
type PerformanceReport struct {
	Period            string         `json:"period"`
	Summary           Summary        `json:"summary"`
	TopPerformers     []Entry        `json:"top_performers"`
	CarrierStatistics []CarrierStats `json:"carrier_statistics"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// =============================================================================
// ANALYZER
// =============================================================================

// Analyzer computes period aggregates over a normalized batch.
type Analyzer struct {
	records []canonical.Record

	// Now supplies report timestamps; swap it in tests for determinism.
	Now func() time.Time
}

// New builds an analyzer over a normalized batch. The records are read,
// never mutated.
func New(records []canonical.Record) *Analyzer {
	return &Analyzer{records: records, Now: time.Now}
}

// forPeriod returns the records whose commission_period matches.
func (a *Analyzer) forPeriod(period string) []canonical.Record {
	var out []canonical.Record
	for _, rec := range a.records {
		if rec.CommissionPeriod == period {
			out = append(out, rec)
		}
	}
	return out
}

// =============================================================================
// TOP PERFORMERS
// =============================================================================

// TopPerformers ranks agents by total commission for the period and returns
// exactly n entries, padding with zero-valued placeholders when fewer than n
// agents exist. Panics with a ConsistencyFault if the result is not sorted
// non-increasing, which would indicate a logic bug rather than bad input.
func (a *Analyzer) TopPerformers(n int, period string) []Entry {
	if n < 1 {
		return nil
	}

	type group struct {
		total    decimal.Decimal
		count    int
		carriers map[string]bool
	}
	groups := make(map[string]*group)
	var order []string

	for _, rec := range a.forPeriod(period) {
		g, found := groups[rec.AgentName]
		if !found {
			g = &group{carriers: make(map[string]bool)}
			groups[rec.AgentName] = g
			order = append(order, rec.AgentName)
		}
		g.total = g.total.Add(rec.CommissionAmount)
		g.count++
		g.carriers[rec.CarrierName] = true
	}

	entries := make([]Entry, 0, len(order))
	for _, agent := range order {
		g := groups[agent]
		count := decimal.NewFromInt(int64(g.count))
		entries = append(entries, Entry{
			AgentName:        agent,
			TotalCommission:  g.total.Round(2),
			AvgCommission:    g.total.Div(count).Round(2),
			TransactionCount: g.count,
			Carriers:         joinSorted(g.carriers),
		})
	}

	// Total descending; equal totals rank by agent name ascending so the
	// order never depends on how the input happened to be interleaved.
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].TotalCommission.Equal(entries[j].TotalCommission) {
			return entries[i].TotalCommission.GreaterThan(entries[j].TotalCommission)
		}
		return entries[i].AgentName < entries[j].AgentName
	})

	// Placeholders fill the deficit only; they never displace real data.
	for k := len(entries) + 1; k <= n; k++ {
		entries = append(entries, Entry{
			AgentName:        fmt.Sprintf("Agent_%d", k),
			TotalCommission:  decimal.Zero.Round(2),
			AvgCommission:    decimal.Zero.Round(2),
			TransactionCount: 0,
			Carriers:         "N/A",
		})
	}
	entries = entries[:n]

	verifySorted(entries)
	return entries
}

// verifySorted enforces the non-increasing totals post-condition.
func verifySorted(entries []Entry) {
	for i := 0; i+1 < len(entries); i++ {
		if entries[i].TotalCommission.LessThan(entries[i+1].TotalCommission) {
			panic(canonical.ConsistencyFault{
				Check: "leaderboard order",
				Detail: fmt.Sprintf("position %d (%s) < position %d (%s)",
					i, entries[i].TotalCommission, i+1, entries[i+1].TotalCommission),
			})
		}
	}
}

// =============================================================================
// PERIOD SUMMARY
// =============================================================================

// PeriodSummary aggregates an entire period: total commission, transaction
// count, distinct agents and members, and the sorted carrier list.
func (a *Analyzer) PeriodSummary(period string) Summary {
	records := a.forPeriod(period)

	total := decimal.Zero
	agents := make(map[string]bool)
	members := make(map[string]bool)
	carriers := make(map[string]bool)
	for _, rec := range records {
		total = total.Add(rec.CommissionAmount)
		agents[rec.AgentName] = true
		members[rec.MemberID] = true
		carriers[rec.CarrierName] = true
	}

	return Summary{
		Period:            period,
		TotalCommission:   total.Round(2),
		TotalTransactions: len(records),
		UniqueAgents:      len(agents),
		UniqueMembers:     len(members),
		Carriers:          sortedKeys(carriers),
		GeneratedAt:       a.Now(),
	}
}

// =============================================================================
// CARRIER STATISTICS
// =============================================================================

// CarrierStatistics aggregates the period per carrier, sorted by carrier
// name: sum, count, and mean commission plus distinct agent and member
// counts, amounts rounded to two decimals.
func (a *Analyzer) CarrierStatistics(period string) []CarrierStats {
	type group struct {
		total   decimal.Decimal
		count   int
		agents  map[string]bool
		members map[string]bool
	}
	groups := make(map[string]*group)

	for _, rec := range a.forPeriod(period) {
		g, found := groups[rec.CarrierName]
		if !found {
			g = &group{agents: make(map[string]bool), members: make(map[string]bool)}
			groups[rec.CarrierName] = g
		}
		g.total = g.total.Add(rec.CommissionAmount)
		g.count++
		g.agents[rec.AgentName] = true
		g.members[rec.MemberID] = true
	}

	carriers := make([]string, 0, len(groups))
	for carrier := range groups {
		carriers = append(carriers, carrier)
	}
	sort.Strings(carriers)

	stats := make([]CarrierStats, 0, len(groups))
	for _, carrier := range carriers {
		g := groups[carrier]
		count := decimal.NewFromInt(int64(g.count))
		stats = append(stats, CarrierStats{
			CarrierName:      carrier,
			TotalCommission:  g.total.Round(2),
			TransactionCount: g.count,
			AvgCommission:    g.total.Div(count).Round(2),
			UniqueAgents:     len(g.agents),
			UniqueMembers:    len(g.members),
		})
	}
	return stats
}

// =============================================================================
// FULL REPORT
// =============================================================================

// Report assembles the complete top-performers report for a period.
func (a *Analyzer) Report(n int, period string) PerformanceReport {
	generated := a.Now()
	return PerformanceReport{
		Period:            period,
		Summary:           a.PeriodSummary(period),
		TopPerformers:     a.TopPerformers(n, period),
		CarrierStatistics: a.CarrierStatistics(period),
		GeneratedAt:       generated,
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func joinSorted(set map[string]bool) string {
	return strings.Join(sortedKeys(set), ", ")
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
