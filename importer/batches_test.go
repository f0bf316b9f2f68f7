package importer

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"ticketflow/dataset"
)

// writeSheet writes a fixture workbook whose first sheet holds the given
// rows starting at A1.
func writeSheet(t *testing.T, dir, file string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(filepath.Join(dir, file)); err != nil {
		t.Fatal(err)
	}
}

func TestReadActivityBatch(t *testing.T) {
	dir := t.TempDir()

	header := make([]any, len(requiredActivityColumns))
	row := make([]any, len(requiredActivityColumns))
	for i, c := range requiredActivityColumns {
		header[i] = c
		row[i] = "v"
	}
	for i, c := range requiredActivityColumns {
		switch c {
		case "Nro TOA":
			row[i] = "12345678"
		case "Estado TOA":
			row[i] = "Cancelado (antiguo)"
		}
	}
	writeSheet(t, dir, "toa.xlsx", [][]any{header, row})

	b, err := ReadActivityBatch(dir, "toa.xlsx", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(b.Table.Rows))
	}
	got := b.Table.Rows[0]
	if v := dataset.Str(got, "Nro_TOA"); v != "12345678" {
		t.Errorf("Nro_TOA = %q", v)
	}
	if v := dataset.Str(got, "Estado_TOA"); v != "Cancelado" {
		t.Errorf("Estado_TOA = %q, want suffix stripped", v)
	}
	if v := dataset.Str(got, SourceFileColumn); v != "toa.xlsx" {
		t.Errorf("%s = %q", SourceFileColumn, v)
	}
}

func TestReadActivityBatchMissingColumns(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, dir, "bad.xlsx", [][]any{
		{"Nro TOA", "Estado TOA"},
		{"12345678", "Completado"},
	})

	_, err := ReadActivityBatch(dir, "bad.xlsx", 1)
	if !errors.Is(err, ErrMissingColumns) {
		t.Errorf("err = %v, want ErrMissingColumns", err)
	}
}

func TestReadTaskBatch(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, dir, "autin.xlsx", [][]any{
		{"Task Id", "Nro TOA", "Task Status"},
		{"TT-001", "12345678", "Completed"},
		{"", "", ""},
	})

	b, err := ReadTaskBatch(dir, "autin.xlsx", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1 (blank row dropped)", len(b.Table.Rows))
	}
	got := b.Table.Rows[0]
	if v := dataset.Str(got, "Number_OS_SIOM"); v != "12345678" {
		t.Errorf("Number_OS_SIOM = %q, want cross-reference renamed", v)
	}
	if b.Table.HasColumn("Nro_TOA") {
		t.Error("raw Nro_TOA column survived the rename")
	}
}

func TestReadPauseBatchRequiresOrderID(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, dir, "pr.xlsx", [][]any{
		{"Task Id", "Pause Reason"},
		{"TT-001", "Weather"},
	})

	_, err := ReadPauseBatch(dir, "pr.xlsx", 1)
	if !errors.Is(err, ErrMissingColumns) {
		t.Errorf("err = %v, want ErrMissingColumns", err)
	}
}

func TestReadIncidentBatch(t *testing.T) {
	dir := t.TempDir()

	header := make([]any, len(incidentColumns))
	row := make([]any, len(incidentColumns))
	for i, c := range incidentColumns {
		header[i] = c.Header
		row[i] = "v"
	}
	row[0] = "INC0001234"
	writeSheet(t, dir, "remedy.xlsx", [][]any{
		{"Reporte de incidencias"},
		{""},
		header,
		row,
	})

	b, err := ReadIncidentBatch(dir, "remedy.xlsx", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(b.Table.Rows))
	}
	got := b.Table.Rows[0]
	if v := dataset.Str(got, "ID_incidencia"); v != "INC0001234" {
		t.Errorf("ID_incidencia = %q", v)
	}
	if seq, _ := dataset.Int(got, IncidentSeqColumn); seq != 3 {
		t.Errorf("%s = %d, want 3", IncidentSeqColumn, seq)
	}
}

func TestReadAlarmCatalog(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, dir, "alarmas.xlsx", [][]any{
		{"Alarma", "Tipo"},
		{"rectificador", "PARCIAL"},
		{"energia", "TOTAL"},
	})

	catalog, err := ReadAlarmCatalog(filepath.Join(dir, "alarmas.xlsx"))
	if err != nil {
		t.Fatal(err)
	}
	if len(catalog.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(catalog.Rows))
	}
	if v := dataset.Str(catalog.Rows[1], "Tipo"); v != "TOTAL" {
		t.Errorf("Tipo = %q", v)
	}
}

func TestReadSiteMaster(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, dir, sitesFile, [][]any{
		{"Codigo Unico", "Nombre", "Region"},
		{"LIM001", "Central Lima", "Lima"},
		{"ARE002", "Arequipa Norte", "Arequipa"},
	})
	writeSheet(t, dir, swapFile, [][]any{
		{"Codigo Unico_Swap", "Codigo Estacion_Swap", "Fecha Fin Swap", "Alarmas Activas Nodo"},
		{"LIM001", "EST-9", "2025-03-01", "2"},
	})
	writeSheet(t, dir, tssFile, [][]any{
		{"Codigo Unico", "Fecha TSS"},
		{"ARE002", "2025-04-15"},
	})

	sites, err := ReadSiteMaster(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(sites.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sites.Rows))
	}

	byCode := map[string]dataset.Row{}
	for _, r := range sites.Rows {
		byCode[dataset.Str(r, "Codigo_Unico")] = r
	}
	if v := dataset.Str(byCode["LIM001"], "Fecha_Fin_Swap"); v != "2025-03-01" {
		t.Errorf("swap join missing, Fecha_Fin_Swap = %q", v)
	}
	if v := dataset.Str(byCode["ARE002"], "Fecha_TSS"); v != "2025-04-15" {
		t.Errorf("tss join missing, Fecha_TSS = %q", v)
	}
	if v := dataset.Str(byCode["ARE002"], "Fecha_Fin_Swap"); v != "" {
		t.Errorf("unswapped site got swap data: %q", v)
	}
}

func TestReadSiteMasterMissingInput(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, dir, sitesFile, [][]any{
		{"Codigo Unico", "Nombre"},
		{"LIM001", "Central Lima"},
	})

	_, err := ReadSiteMaster(dir)
	if !errors.Is(err, ErrNoSourceFiles) {
		t.Errorf("err = %v, want ErrNoSourceFiles", err)
	}
}
