package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"ticketflow/database"
	"ticketflow/dataset"
)

// Site-master input files. All three must be present; the site join is a
// hard precondition of the reconciliation run.
const (
	sitesFile = "sitios.xlsx"
	swapFile  = "swap.xlsx"
	tssFile   = "tss.xlsx"
)

// siteJoinColumn is the site identifier all three files share.
const siteJoinColumn = "Codigo Unico"

// swapColumns is the subset of the swap tracker joined onto the site
// master.
var swapColumns = []string{"Codigo Estacion", "Fecha Fin Swap", "Alarmas Activas Nodo"}

// ReadSiteMaster builds the site-master table: the base site inventory
// left-joined with the swap tracker subset and the TSS acceptance dates.
// Swap columns arrive suffixed "_Swap" in some deliveries; the suffix is
// stripped before the join.
func ReadSiteMaster(dir string) (*dataset.Table, error) {
	base, err := readSiteSheet(filepath.Join(dir, sitesFile))
	if err != nil {
		return nil, fmt.Errorf("%w: site master needs %s: %v", ErrNoSourceFiles, sitesFile, err)
	}
	swap, err := readSiteSheet(filepath.Join(dir, swapFile))
	if err != nil {
		return nil, fmt.Errorf("%w: site master needs %s: %v", ErrNoSourceFiles, swapFile, err)
	}
	tss, err := readSiteSheet(filepath.Join(dir, tssFile))
	if err != nil {
		return nil, fmt.Errorf("%w: site master needs %s: %v", ErrNoSourceFiles, tssFile, err)
	}

	swapByCode := indexBySite(swap)
	tssByCode := indexBySite(tss)

	t := dataset.NewTable(database.TableSites)
	for _, row := range base.Rows {
		code := dataset.Str(row, dataset.NormalizeHeader(siteJoinColumn))
		out := dataset.Row{}
		for k, v := range row {
			out[k] = v
		}
		if sw, ok := swapByCode[strings.ToUpper(code)]; ok {
			for _, col := range swapColumns {
				name := dataset.NormalizeHeader(col)
				out[name] = sw[name]
			}
		}
		if ts, ok := tssByCode[strings.ToUpper(code)]; ok {
			for k, v := range ts {
				if k == dataset.NormalizeHeader(siteJoinColumn) {
					continue
				}
				out[k] = v
			}
		}
		t.Append(out)
	}
	return t, nil
}

// readSiteSheet loads one site file with normalized headers and the
// "_Swap" delivery suffix stripped.
func readSiteSheet(path string) (*dataset.Table, error) {
	sheet, err := readSheet(path, "", 0)
	if err != nil {
		return nil, err
	}

	t := dataset.NewTable(filepath.Base(path))
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
			name := dataset.NormalizeHeader(strings.TrimSuffix(col, "_Swap"))
			row[name] = sheet.cell(raw, col)
		}
		t.Append(row)
	}
	return t, nil
}

func indexBySite(t *dataset.Table) map[string]dataset.Row {
	key := dataset.NormalizeHeader(siteJoinColumn)
	idx := make(map[string]dataset.Row, len(t.Rows))
	for _, row := range t.Rows {
		code := strings.ToUpper(dataset.Str(row, key))
		if code == "" {
			continue
		}
		idx[code] = row
	}
	return idx
}
