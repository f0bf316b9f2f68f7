package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ticketflow/database"
	"ticketflow/dataset"
	"ticketflow/importer"
	"ticketflow/internal/config"
)

// activityHeaders is the full column contract of an activity export.
var activityHeaders = []string{
	"Técnico", "ID Recurso", "Nro TOA", "Subtipo de Actividad", "Número de Petición",
	"Fecha de Cita", "SLA Inicio", "SLA Fin", "Localidad", "Dirección",
	"Direccion Polar X", "Direccion Polar Y", "Nombre Cliente",
	"Hora de asignación de actividad", "Fecha de Registro de actividad TOA",
	"Notas", "Código de Cliente", "Fecha Hora de Cancelación", "Empresa",
	"Bucket Inicial", "Usuario - Iniciado", "Nombre Distrito", "Sistema Origen",
	"ID del Ticket", "Quiebres", "Fecha de Inicio PINT",
	"Inicio PR1", "Fin PR1", "Inicio PR2", "Fin PR2",
	"Inicio PR3", "Fin PR3", "Inicio PR4", "Fin PR4",
	"Motivo PR1", "Motivo PR2", "Motivo PR3", "Motivo PR4",
	"Nombre Local", "Tipo de local", "Zona geográfica", "Zona", "Estado TOA",
}

var incidentHeaders = []string{
	"ID de la incidencia*+", "Estado*", "Fecha de envío", "Fecha de cierre",
	"Fecha inicio incidente", "Fecha fin incidente", "Tipo de Afectación",
	"Resumen*", "Notas", "Grupo asignado*+",
}

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func activityRow(values map[string]any) []any {
	row := make([]any, len(activityHeaders))
	for i, h := range activityHeaders {
		if v, ok := values[h]; ok {
			row[i] = v
		} else {
			row[i] = ""
		}
	}
	return row
}

func headerRow(headers []string) []any {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

// seedBase lays out a full source directory tree with one coherent
// record per system.
func seedBase(t *testing.T, base string) *config.Config {
	t.Helper()
	cfg := &config.Config{
		BasePath:               base,
		ActivityDir:            "TOA base",
		TaskDir:                filepath.Join("Autin base", "Autin Tickets"),
		PauseDir:               filepath.Join("Autin base", "Autin PR"),
		IncidentDir:            "Remedy base",
		SiteDir:                filepath.Join("DATA", "SITIOS"),
		DatabasePath:           "tickets_data.db",
		ReportDir:              ".",
		ConsolidatedReportFile: "Reporte.xlsx",
		IncidentReportFile:     "Remedy_procesado.xlsx",
		DefaultColumnType:      dataset.TypeText,
		RetentionDays:          importer.DefaultRetentionDays,
	}
	require.NoError(t, cfg.Validate())

	writeWorkbook(t, filepath.Join(base, cfg.ActivityDir, "01.08 TOA.xlsx"), [][]any{
		headerRow(activityHeaders),
		activityRow(map[string]any{
			"Nro TOA":                            "12345678.0",
			"Estado TOA":                         "Pendiente",
			"Código de Cliente":                  "LM12345",
			"Bucket Inicial":                     "FLM COMFICA LIMA",
			"ID del Ticket":                      "INC2000001",
			"Fecha de Registro de actividad TOA": "2025-08-01 08:00:00",
			"Nombre Local":                       "Estacion Centro",
		}),
	})
	writeWorkbook(t, filepath.Join(base, cfg.TaskDir, "01.08 tickets.xlsx"), [][]any{
		{"Task Id", "Nro TOA", "Task Status", "Task Category", "Site Id",
			"Createtime", "Cancel Reason", "Reject Counter", "Com Level 1 Aff Equip"},
		{"CM-001", "12345678", "completed", "CM", "LM12345",
			"2025-08-01 08:30:00", "", "0", "Rectificador"},
	})
	writeWorkbook(t, filepath.Join(base, cfg.PauseDir, "01.08 pr.xlsx"), [][]any{
		{"Order ID", "Operation Time", "Pause Time", "Reason"},
		{"CM-001", "2025-08-01 09:00:00", "Pause", "Clima"},
	})
	writeWorkbook(t, filepath.Join(base, cfg.IncidentDir, "01.08 incidencias.xlsx"), [][]any{
		{"Reporte de incidencias"},
		{""},
		headerRow(incidentHeaders),
		{"INC2000001", "Cerrado", "2025-08-01 07:30:00", "", "2025-08-01 07:00:00", "",
			"Total", "SITE|rectificador|LM12345", "", "FLM COMFICA"},
	})
	writeWorkbook(t, filepath.Join(base, cfg.IncidentDir, "alarmas.xlsx"), [][]any{
		{"Alarma", "Tipo"},
		{"rectificador", "PARCIAL"},
	})
	writeWorkbook(t, filepath.Join(base, cfg.SiteDir, "sitios.xlsx"), [][]any{
		{"Codigo Unico", "Proveedor FLM", "priorizacion", "Departamento"},
		{"LM12345", "COMFICA", "Oro", "Lima"},
	})
	writeWorkbook(t, filepath.Join(base, cfg.SiteDir, "swap.xlsx"), [][]any{
		{"Codigo Unico_Swap", "Codigo Estacion_Swap", "Fecha Fin Swap", "Alarmas Activas Nodo"},
		{"LM12345", "EST-1", "2025-07-20", "1"},
	})
	writeWorkbook(t, filepath.Join(base, cfg.SiteDir, "tss.xlsx"), [][]any{
		{"Codigo Unico", "Fecha TSS"},
		{"LM12345", "2025-07-28"},
	})
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	base := t.TempDir()
	cfg := seedBase(t, base)

	runner, err := NewRunner(cfg)
	require.NoError(t, err)
	defer runner.Close()

	require.NoError(t, runner.Run())

	for _, table := range []string{
		database.TableActivities, database.TableTasks, database.TablePauses,
		database.TableSites, database.TableIncidents, database.TableConsolidated,
	} {
		n, err := runner.store.RowCount(table)
		require.NoError(t, err, table)
		assert.Equal(t, 1, n, table)
	}

	activities, err := runner.store.ReadTable(database.TableActivities)
	require.NoError(t, err)
	assert.Equal(t, "12345678", dataset.Str(activities.Rows[0], "Nro_TOA"),
		"float rendering of the activity number must be normalized")

	consolidated, err := runner.store.ReadTable(database.TableConsolidated)
	require.NoError(t, err)
	row := consolidated.Rows[0]
	assert.Equal(t, "comfica", dataset.Str(row, "Empresa"))
	assert.Equal(t, "CM-001", dataset.Str(row, "Autin_ID_1"))
	assert.Equal(t, "Estacion Centro", dataset.Str(row, "Nombre_Local"))

	catalog, err := runner.store.AlarmCatalog()
	require.NoError(t, err)
	assert.Equal(t, "PARCIAL", catalog["rectificador"])

	for _, file := range []string{
		"Reporte.xlsx", "reporte_Comfica.xlsx", "reporte_Huawei.xlsx",
		filepath.Join(cfg.IncidentDir, "Remedy_procesado.xlsx"),
	} {
		_, err := os.Stat(filepath.Join(base, file))
		assert.NoError(t, err, file)
	}

	_, err = os.Stat(filepath.Join(base, cfg.ActivityDir, "01.08 TOA.xlsx"))
	assert.True(t, os.IsNotExist(err), "processed export must be archived")
}

func TestRunKeepsPersistedDataWithoutNewFiles(t *testing.T) {
	base := t.TempDir()
	cfg := seedBase(t, base)

	runner, err := NewRunner(cfg)
	require.NoError(t, err)
	defer runner.Close()

	require.NoError(t, runner.Run())
	// all source exports are archived now; a second run works from the
	// persisted tables alone
	require.NoError(t, runner.Run())

	n, err := runner.store.RowCount(database.TableActivities)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunFailsWithoutSiteMaster(t *testing.T) {
	base := t.TempDir()
	cfg := seedBase(t, base)
	require.NoError(t, os.Remove(filepath.Join(base, cfg.SiteDir, "sitios.xlsx")))

	runner, err := NewRunner(cfg)
	require.NoError(t, err)
	defer runner.Close()

	err = runner.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, importer.ErrNoSourceFiles))

	has, err := runner.store.HasTable(database.TableActivities)
	require.NoError(t, err)
	assert.False(t, has, "no table may be written when the site master is missing")
}
