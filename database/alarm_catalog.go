package database

import (
	"fmt"
	"strings"

	"ticketflow/dataset"
)

// AlarmCatalogTable is the reference list of known alarm names and their
// severity, loaded from the alarm reference workbook.
const AlarmCatalogTable = "alarm_catalog"

// AlarmCatalog reads the reference list as alarm -> severity, keys
// lowercased and trimmed for matching. A missing table returns an empty
// catalog: every alarm then resolves to the not-identified sentinel.
func (s *Store) AlarmCatalog() (map[string]string, error) {
	t, err := s.ReadTable(AlarmCatalogTable)
	if err != nil {
		return nil, fmt.Errorf("failed to read alarm catalog: %w", err)
	}
	catalog := make(map[string]string)
	if t == nil {
		return catalog, nil
	}
	for _, row := range t.Rows {
		alarm := strings.ToLower(dataset.Str(row, "Alarma"))
		if alarm == "" {
			continue
		}
		catalog[alarm] = dataset.Str(row, "Tipo")
	}
	return catalog, nil
}
