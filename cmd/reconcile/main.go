/*
main.go - One-shot commission reconciliation CLI

PURPOSE:
  Runs a full reconciliation pass over the configured carrier files,
  persists the run to SQLite, and prints the performance report to
  stdout: period summary, top-N earners, and per-carrier statistics.

USAGE:
  reconcile [-db path] [-period YYYY-MM] [-n count]

  Sources come from the configuration file (COMMISSION_CONFIG) or
  environment; flags override the store path, report period, and
  leaderboard size.

SEE ALSO:
  - reconcile/runner.go: Ingest/normalize/persist pipeline
  - rank/aggregator.go: Report computation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/warp/commission-engine/config"
	"github.com/warp/commission-engine/rank"
	"github.com/warp/commission-engine/reconcile"
	"github.com/warp/commission-engine/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	period := flag.String("period", "", "Commission period YYYY-MM (overrides config)")
	topN := flag.Int("n", 0, "Leaderboard size (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *period != "" {
		cfg.Period = *period
	}
	if *topN > 0 {
		cfg.TopN = *topN
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	runner := reconcile.NewRunner(cfg, store)
	run, batch, err := runner.Run(context.Background())
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	analyzer := rank.New(batch.Records)
	printReport(analyzer.Report(cfg.TopN, cfg.Period))

	fmt.Printf("\nRun %s saved: %d records from %d sources, total $%s\n",
		run.ID, run.RecordCount, run.SourceCount, run.TotalCommission.StringFixed(2))
}

func printReport(report rank.PerformanceReport) {
	s := report.Summary
	fmt.Printf("=== Commission Summary for %s ===\n", s.Period)
	fmt.Printf("Total commission: $%s\n", s.TotalCommission.StringFixed(2))
	fmt.Printf("Transactions:     %d\n", s.TotalTransactions)
	fmt.Printf("Agents:           %d\n", s.UniqueAgents)
	fmt.Printf("Carriers:         %d\n", len(s.Carriers))

	fmt.Printf("\n=== Top %d Performers ===\n", len(report.TopPerformers))
	for i, entry := range report.TopPerformers {
		fmt.Printf("%2d. %-30s $%12s  (%d transactions, avg $%s) [%s]\n",
			i+1, entry.AgentName, entry.TotalCommission.StringFixed(2),
			entry.TransactionCount, entry.AvgCommission.StringFixed(2), entry.Carriers)
	}

	fmt.Println("\n=== Carrier Statistics ===")
	for _, cs := range report.CarrierStatistics {
		fmt.Printf("%-20s $%12s  (%d transactions, %d agents)\n",
			cs.CarrierName, cs.TotalCommission.StringFixed(2), cs.TransactionCount, cs.UniqueAgents)
	}
}
