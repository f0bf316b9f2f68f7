// Package report renders the pipeline's output tables into formatted
// Excel workbooks: the internal consolidated report with its alerting
// highlights, the stripped-down per-vendor files, and the incident
// reconciliation report.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ticketflow/dataset"
)

// SheetName is the worksheet every report writes to.
const SheetName = "Sheet1"

const (
	highlightFillColor = "FCAF3E"
	highlightFontColor = "993300"
	datetimeFormat     = "DD/MM/YYYY HH:MM AM/PM"
	hoursFormat        = "0.00"
)

// Aging bands for the Semaforo column, in hours.
const (
	agingGreenMax  = 3
	agingYellowMax = 6
)

// terminalActivityStates are the activity states that stop the aging
// clock; open activities get the Semaforo formula.
var terminalActivityStates = map[string]bool{
	"Completado": true,
	"Cancelado":  true,
}

type reportStyles struct {
	datetime       int
	orange         int
	orangeDatetime int
	hours          int
}

func newReportStyles(f *excelize.File) (reportStyles, error) {
	var st reportStyles
	var err error

	dtFmt := datetimeFormat
	if st.datetime, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dtFmt}); err != nil {
		return st, fmt.Errorf("failed to create datetime style: %w", err)
	}

	fill := excelize.Fill{Type: "pattern", Color: []string{highlightFillColor}, Pattern: 1}
	font := excelize.Font{Color: highlightFontColor}
	if st.orange, err = f.NewStyle(&excelize.Style{Fill: fill, Font: &font}); err != nil {
		return st, fmt.Errorf("failed to create highlight style: %w", err)
	}
	if st.orangeDatetime, err = f.NewStyle(&excelize.Style{Fill: fill, Font: &font, CustomNumFmt: &dtFmt}); err != nil {
		return st, fmt.Errorf("failed to create highlight datetime style: %w", err)
	}

	hrFmt := hoursFormat
	if st.hours, err = f.NewStyle(&excelize.Style{CustomNumFmt: &hrFmt}); err != nil {
		return st, fmt.Errorf("failed to create hours style: %w", err)
	}
	return st, nil
}

// displayValue maps a stored cell value to what the report shows:
// nulls, zeros and stringified NaN become a blank cell.
func displayValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" || x == "nan" || x == "None" {
			return nil
		}
		return x
	case int64:
		if x == 0 {
			return nil
		}
		return x
	case float64:
		if x == 0 {
			return nil
		}
		return x
	default:
		return v
	}
}

// WriteConsolidated renders the consolidated table into the internal
// tracking workbook: highlighted alert cells, an aging formula column
// with traffic-light conditional formatting and an Excel table over the
// full range.
func WriteConsolidated(path string, table *dataset.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newReportStyles(f)
	if err != nil {
		return err
	}

	cols := table.Columns
	colIdx := make(map[string]int, len(cols))
	for i, c := range cols {
		colIdx[c] = i + 1
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, c)
	}
	agingCol := len(cols) + 1
	cell, _ := excelize.CoordinatesToCellName(agingCol, 1)
	f.SetCellValue(SheetName, cell, "Semaforo")

	for i, row := range table.Rows {
		r := i + 2
		if err := writeRow(f, st, cols, row, r); err != nil {
			return err
		}
		highlightAlerts(f, st, cols, colIdx, row, r)

		// Open activities get the live aging formula against the
		// registration timestamp in column B.
		if !terminalActivityStates[dataset.Str(row, "Estado_TOA")] {
			cell, _ := excelize.CoordinatesToCellName(agingCol, r)
			if err := f.SetCellFormula(SheetName, cell, fmt.Sprintf("(NOW()-B%d)*24", r)); err != nil {
				return fmt.Errorf("failed to set aging formula: %w", err)
			}
			f.SetCellStyle(SheetName, cell, cell, st.hours)
		}
	}

	if len(table.Rows) > 0 {
		if err := decorateConsolidated(f, agingCol, len(table.Rows)+1); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, st reportStyles, cols []string, row dataset.Row, r int) error {
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
	return nil
}

// highlightAlerts paints the orange attention cells: rejected visits,
// activities inside the post-swap and post-TSS guard periods, and
// paused secondary tasks. Guard-period and pause highlights extend over
// the neighboring context cells.
func highlightAlerts(f *excelize.File, st reportStyles, cols []string, colIdx map[string]int, row dataset.Row, r int) {
	if n, ok := dataset.Int(row, "Rechazos"); ok && n > 0 {
		paintOrange(f, st, cols, row, colIdx["Rechazos"], r, 0)
	}
	if n, ok := dataset.Int(row, "Dias_Swap"); ok && n > 0 && n < 8 {
		paintOrange(f, st, cols, row, colIdx["Dias_Swap"], r, 2)
	}
	if n, ok := dataset.Int(row, "Dias_TSS"); ok && n > 0 && n < 8 {
		paintOrange(f, st, cols, row, colIdx["Dias_TSS"], r, 1)
	}
	for _, col := range []string{"Estado_PR_1", "Estado_PR_2", "Estado_PR_3"} {
		if strings.Contains(dataset.Str(row, col), "Pause") {
			paintOrange(f, st, cols, row, colIdx[col], r, 2)
		}
	}
}

// paintOrange highlights the cell at 1-indexed column col plus span
// cells to its left, preserving the datetime format of timestamp cells.
func paintOrange(f *excelize.File, st reportStyles, cols []string, row dataset.Row, col, r, span int) {
	if col == 0 {
		return
	}
	for c := col - span; c <= col; c++ {
		if c < 1 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(c, r)
		style := st.orange
		if _, ok := displayValue(row[cols[c-1]]).(time.Time); ok {
			style = st.orangeDatetime
		}
		f.SetCellStyle(SheetName, cell, cell, style)
	}
}

// decorateConsolidated adds the Excel table over the data range and the
// traffic-light conditional formatting on the aging column.
func decorateConsolidated(f *excelize.File, agingCol, lastRow int) error {
	lastColName, err := excelize.ColumnNumberToName(agingCol)
	if err != nil {
		return fmt.Errorf("failed to resolve last column: %w", err)
	}

	stripes := true
	if err := f.AddTable(SheetName, &excelize.Table{
		Range:          fmt.Sprintf("A1:%s%d", lastColName, lastRow),
		Name:           "TablaDatos",
		StyleName:      "TableStyleLight2",
		ShowRowStripes: &stripes,
	}); err != nil {
		return fmt.Errorf("failed to add table: %w", err)
	}

	green, err := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"ACEB67"}, Pattern: 1},
		Font: &excelize.Font{Color: "2B7204"},
	})
	if err != nil {
		return fmt.Errorf("failed to create aging style: %w", err)
	}
	yellow, err := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F5F19D"}, Pattern: 1},
		Font: &excelize.Font{Color: "9D8705"},
	})
	if err != nil {
		return fmt.Errorf("failed to create aging style: %w", err)
	}
	red, err := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F4CCCC"}, Pattern: 1},
		Font: &excelize.Font{Color: "8B0000"},
	})
	if err != nil {
		return fmt.Errorf("failed to create aging style: %w", err)
	}

	agingRange := fmt.Sprintf("%s2:%s%d", lastColName, lastColName, lastRow)
	err = f.SetConditionalFormat(SheetName, agingRange, []excelize.ConditionalFormatOptions{
		{Type: "cell", Criteria: "between", MinValue: "0.000001", MaxValue: fmt.Sprint(agingGreenMax), StopIfTrue: true, Format: &green},
		{Type: "cell", Criteria: "between", MinValue: fmt.Sprint(agingGreenMax), MaxValue: fmt.Sprint(agingYellowMax), StopIfTrue: true, Format: &yellow},
		{Type: "cell", Criteria: ">", Value: fmt.Sprint(agingYellowMax), StopIfTrue: true, Format: &red},
	})
	if err != nil {
		return fmt.Errorf("failed to set conditional format: %w", err)
	}
	return nil
}
