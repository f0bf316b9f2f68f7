// Package config loads the pipeline configuration from the
// environment: source directories, database location, report targets
// and run behavior.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ticketflow/dataset"
)

// Config is the full pipeline configuration.
type Config struct {
	// BasePath is the working directory every relative path resolves
	// against.
	BasePath string

	// Source directories, one per operational system export.
	ActivityDir string
	TaskDir     string
	PauseDir    string
	IncidentDir string
	SiteDir     string

	DatabasePath string

	// Report outputs. SkipReports persists the tables but renders no
	// workbook.
	ReportDir              string
	ConsolidatedReportFile string
	IncidentReportFile     string
	SkipReports            bool

	// Interactive selects the stdin type prompt for columns missing
	// from the type registry; unattended runs use DefaultColumnType.
	Interactive       bool
	DefaultColumnType dataset.ColumnType

	// RetentionDays is how long archived source files are kept.
	RetentionDays int

	// IncidentLookbackDays limits incident reconciliation to recent
	// incidents. Zero processes everything.
	IncidentLookbackDays int
}

// Load builds the configuration from environment variables, falling
// back to the standard layout under BASE_PATH.
func Load() (*Config, error) {
	cfg := &Config{
		BasePath: getEnv("BASE_PATH", "."),

		ActivityDir: getEnv("TOA_DIR", "TOA base"),
		TaskDir:     getEnv("AUTIN_DIR", filepath.Join("Autin base", "Autin Tickets")),
		PauseDir:    getEnv("AUTIN_PR_DIR", filepath.Join("Autin base", "Autin PR")),
		IncidentDir: getEnv("REMEDY_DIR", "Remedy base"),
		SiteDir:     getEnv("SITES_DIR", filepath.Join("DATA", "SITIOS")),

		DatabasePath: getEnv("DATABASE_PATH", "tickets_data.db"),

		ReportDir:              getEnv("REPORT_DIR", "."),
		ConsolidatedReportFile: getEnv("CONSOLIDATED_REPORT_FILE", "Reporte.xlsx"),
		IncidentReportFile:     getEnv("INCIDENT_REPORT_FILE", "Remedy_procesado.xlsx"),
		SkipReports:            getEnv("SKIP_REPORTS", "false") == "true",

		Interactive:       getEnv("INTERACTIVE_TYPES", "false") == "true",
		DefaultColumnType: dataset.ColumnType(getEnv("DEFAULT_COLUMN_TYPE", string(dataset.TypeText))),

		RetentionDays:        getEnvInt("RETENTION_DAYS", 5),
		IncidentLookbackDays: getEnvInt("INCIDENT_LOOKBACK_DAYS", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Resolve joins a configured path with BasePath unless it is already
// absolute.
func (c *Config) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BasePath, path)
}

// IncidentHorizon returns the earliest incident start the run still
// reconciles. The zero time means no horizon.
func (c *Config) IncidentHorizon(now time.Time) time.Time {
	if c.IncidentLookbackDays <= 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -c.IncidentLookbackDays)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
