package main

import (
	"flag"
	"log"

	"ticketflow/internal/config"
	"ticketflow/pipeline"
)

func main() {
	basePath := flag.String("base", "", "base directory with the source export folders (overrides BASE_PATH)")
	dbPath := flag.String("db", "", "path of the SQLite store (overrides DATABASE_PATH)")
	interactive := flag.Bool("interactive", false, "prompt for the type of unknown columns instead of using the configured default")
	lookbackDays := flag.Int("lookback", -1, "only reconcile incidents started within this many days (overrides INCIDENT_LOOKBACK_DAYS)")
	noReports := flag.Bool("no-reports", false, "persist the tables but skip report rendering")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if *basePath != "" {
		cfg.BasePath = *basePath
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *interactive {
		cfg.Interactive = true
	}
	if *lookbackDays >= 0 {
		cfg.IncidentLookbackDays = *lookbackDays
	}
	if *noReports {
		cfg.SkipReports = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	runner, err := pipeline.NewRunner(cfg)
	if err != nil {
		log.Fatalf("Startup error: %v", err)
	}
	defer runner.Close()

	if err := runner.Run(); err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
}
