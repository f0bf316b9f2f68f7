package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ticketflow/dataset"
)

// Vendor report file names.
const (
	ComficaReportFile = "reporte_Comfica.xlsx"
	HuaweiReportFile  = "reporte_Huawei.xlsx"
)

// internalColumns are the analyst-only columns stripped from the files
// shared with the field vendors.
var internalColumns = map[string]bool{
	"Tarea_Abastecimiento":         true,
	"Estado_Abastecimiento":        true,
	"Hora_Creacion_Abastecimiento": true,
	"Dias_Abastecimiento":          true,
	"Rechazos":                     true,
	"Equipo_Afectado":              true,
	"Duracion_Horas":               true,
	"Reiteradas":                   true,
	"TOA_Reiterado":                true,
	"Proactivo":                    true,
	"Marcha_Blanca":                true,
	"Responsable":                  true,
	"Test":                         true,
	"Fecha_Fin_Swap":               true,
	"Alarmas_Activas":              true,
	"Dias_Swap":                    true,
	"Fecha_TSS":                    true,
	"Dias_TSS":                     true,
	"Etiqueta":                     true,
}

// WriteVendorReports splits the consolidated table by vendor bucket and
// writes one workbook per vendor into dir, without the internal
// tracking columns.
func WriteVendorReports(dir string, table *dataset.Table) error {
	vendors := []struct {
		name string
		file string
	}{
		{"comfica", ComficaReportFile},
		{"huawei", HuaweiReportFile},
	}
	for _, v := range vendors {
		if err := writeVendorReport(filepath.Join(dir, v.file), table, v.name); err != nil {
			return fmt.Errorf("failed to write %s report: %w", v.name, err)
		}
	}
	return nil
}

func writeVendorReport(path string, table *dataset.Table, vendor string) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newReportStyles(f)
	if err != nil {
		return err
	}

	cols := make([]string, 0, len(table.Columns))
	for _, c := range table.Columns {
		if !internalColumns[c] {
			cols = append(cols, c)
		}
	}
	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, c)
	}

	r := 2
	for _, row := range table.Rows {
		if !strings.Contains(strings.ToLower(dataset.Str(row, "Bucket")), vendor) {
			continue
		}
		for i, col := range cols {
			v := displayValue(row[col])
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, r)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
			if _, ok := v.(time.Time); ok {
				f.SetCellStyle(SheetName, cell, cell, st.datetime)
			}
		}
		r++
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}
