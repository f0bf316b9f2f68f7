package config

import (
	"fmt"
	"strings"

	"ticketflow/dataset"
)

// Validate checks the configuration for values that would make the run
// fail halfway through.
func (c *Config) Validate() error {
	var errors []string

	if c.BasePath == "" {
		errors = append(errors, "base path is required")
	}
	if c.DatabasePath == "" {
		errors = append(errors, "database path is required")
	}

	for _, dir := range []struct {
		name string
		path string
	}{
		{"activity directory", c.ActivityDir},
		{"task directory", c.TaskDir},
		{"pause directory", c.PauseDir},
		{"incident directory", c.IncidentDir},
		{"site directory", c.SiteDir},
		{"report directory", c.ReportDir},
	} {
		if dir.path == "" {
			errors = append(errors, fmt.Sprintf("%s is required", dir.name))
		}
	}

	if c.ConsolidatedReportFile == "" {
		errors = append(errors, "consolidated report file is required")
	}
	if c.IncidentReportFile == "" {
		errors = append(errors, "incident report file is required")
	}

	if c.DefaultColumnType != "" && !dataset.ValidType(c.DefaultColumnType) {
		errors = append(errors, fmt.Sprintf("invalid default column type: %s", c.DefaultColumnType))
	}
	if !c.Interactive && c.DefaultColumnType == "" {
		errors = append(errors, "default column type is required for unattended runs")
	}

	if c.RetentionDays < 0 {
		errors = append(errors, "retention days cannot be negative")
	}
	if c.IncidentLookbackDays < 0 {
		errors = append(errors, "incident lookback days cannot be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}
