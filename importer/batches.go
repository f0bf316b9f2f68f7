package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"ticketflow/database"
	"ticketflow/dataset"
)

// activitySheetNames are the worksheet names an activity export may use,
// tried in order.
var activitySheetNames = []string{"Sheet1", "Page 1"}

// ReadActivityBatch parses one activity export file into a normalized
// table. The file must carry the full activity column contract; a file
// missing columns is rejected with ErrMissingColumns and skipped.
func ReadActivityBatch(dir, file string, seq int) (dataset.Batch, error) {
	path := filepath.Join(dir, file)
	sheet, err := openActivitySheet(path)
	if err != nil {
		return dataset.Batch{}, err
	}

	if missing := sheet.missingColumns(requiredActivityColumns); len(missing) > 0 {
		return dataset.Batch{}, fmt.Errorf("%w: %s lacks %s", ErrMissingColumns, file, strings.Join(missing, ", "))
	}

	t := dataset.NewTable(database.TableActivities)
	for _, raw := range sheet.rows {
		if isEmptyRow(raw) {
			continue
		}
		row := dataset.Row{}
		for _, col := range requiredActivityColumns {
			v := sheet.cell(raw, col)
			if col == "Estado TOA" {
				v = strings.TrimSpace(strings.ReplaceAll(v, "(antiguo)", ""))
			}
			row[dataset.NormalizeHeader(col)] = v
		}
		row[SourceFileColumn] = file
		t.Append(row)
	}
	return dataset.Batch{Seq: seq, Source: file, Table: t}, nil
}

func openActivitySheet(path string) (*rawSheet, error) {
	names, err := sheetNames(path)
	if err != nil {
		return nil, err
	}
	for _, want := range activitySheetNames {
		for _, have := range names {
			if have == want {
				return readSheet(path, want, 0)
			}
		}
	}
	return readSheet(path, "", 0)
}

// ReadTaskBatch parses one task export file. Only the "Task Id" column
// is mandatory; everything else is carried through as-is, with the
// activity cross-reference renamed to its canonical name.
func ReadTaskBatch(dir, file string, seq int) (dataset.Batch, error) {
	sheet, err := readSheet(filepath.Join(dir, file), "", 0)
	if err != nil {
		return dataset.Batch{}, err
	}
	if missing := sheet.missingColumns([]string{"Task Id"}); len(missing) > 0 {
		return dataset.Batch{}, fmt.Errorf("%w: %s lacks Task Id", ErrMissingColumns, file)
	}

	t := dataset.NewTable(database.TableTasks)
	for _, raw := range sheet.rows {
		if isEmptyRow(raw) {
			continue
		}
		row := dataset.Row{}
		for _, col := range sheet.headers {
			col = strings.TrimSpace(col)
			if col == "" {
				continue
			}
			name := dataset.NormalizeHeader(col)
			if col == "Nro TOA" {
				name = "Number_OS_SIOM"
			}
			row[name] = sheet.cell(raw, col)
		}
		row[SourceFileColumn] = file
		t.Append(row)
	}
	return dataset.Batch{Seq: seq, Source: file, Table: t}, nil
}

// ReadPauseBatch parses one pause/resume export file. Only "Order ID" is
// mandatory.
func ReadPauseBatch(dir, file string, seq int) (dataset.Batch, error) {
	sheet, err := readSheet(filepath.Join(dir, file), "", 0)
	if err != nil {
		return dataset.Batch{}, err
	}
	if missing := sheet.missingColumns([]string{"Order ID"}); len(missing) > 0 {
		return dataset.Batch{}, fmt.Errorf("%w: %s lacks Order ID", ErrMissingColumns, file)
	}

	t := dataset.NewTable(database.TablePauses)
	for _, raw := range sheet.rows {
		if isEmptyRow(raw) {
			continue
		}
		row := dataset.Row{}
		for _, col := range sheet.headers {
			col = strings.TrimSpace(col)
			if col == "" {
				continue
			}
			row[dataset.NormalizeHeader(col)] = sheet.cell(raw, col)
		}
		row[SourceFileColumn] = file
		t.Append(row)
	}
	return dataset.Batch{Seq: seq, Source: file, Table: t}, nil
}

// incidentSkipRows is the banner row count above the incident header row.
const incidentSkipRows = 2

// ReadIncidentBatch parses one incident export file. The export carries
// two banner rows before the header; only the canonical incident columns
// are kept and each row records its ingestion sequence so fresher files
// win on merge.
func ReadIncidentBatch(dir, file string, seq int) (dataset.Batch, error) {
	sheet, err := readSheet(filepath.Join(dir, file), "", incidentSkipRows)
	if err != nil {
		return dataset.Batch{}, err
	}

	var required []string
	for _, c := range incidentColumns {
		required = append(required, c.Header)
	}
	if missing := sheet.missingColumns(required); len(missing) > 0 {
		return dataset.Batch{}, fmt.Errorf("%w: %s lacks %s", ErrMissingColumns, file, strings.Join(missing, ", "))
	}

	t := dataset.NewTable(database.TableIncidents)
	for _, raw := range sheet.rows {
		if isEmptyRow(raw) {
			continue
		}
		row := dataset.Row{}
		for _, c := range incidentColumns {
			row[c.Canonical] = sheet.cell(raw, c.Header)
		}
		row[IncidentSeqColumn] = int64(seq)
		row[SourceFileColumn] = file
		t.Append(row)
	}
	return dataset.Batch{Seq: seq, Source: file, Table: t}, nil
}

// DiscoverIncidentFiles lists the unprocessed incident exports of a
// directory, alphabetically. The alarm catalog and persisted-base
// exports that share the directory are not incident inputs.
func DiscoverIncidentFiles(dir string) ([]string, error) {
	files, err := DiscoverFiles(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range files {
		lower := strings.ToLower(f)
		if strings.Contains(lower, "alarmas") || strings.Contains(lower, "remedy_base") {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// ReadAlarmCatalog parses the alarm classification catalog, a two-column
// sheet mapping alarm text to its type label.
func ReadAlarmCatalog(path string) (*dataset.Table, error) {
	sheet, err := readSheet(path, "", 0)
	if err != nil {
		return nil, err
	}
	if missing := sheet.missingColumns([]string{"Alarma", "Tipo"}); len(missing) > 0 {
		return nil, fmt.Errorf("%w: alarm catalog lacks %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	t := dataset.NewTable(database.AlarmCatalogTable, "Alarma", "Tipo")
	for _, raw := range sheet.rows {
		if isEmptyRow(raw) {
			continue
		}
		t.Append(dataset.Row{
			"Alarma": sheet.cell(raw, "Alarma"),
			"Tipo":   sheet.cell(raw, "Tipo"),
		})
	}
	return t, nil
}
