// Command generate_test_data writes a synthetic source-export tree in
// the layout the pipeline ingests: activity, task, pause and incident
// workbooks plus the site-master trio. Useful for load checks and for
// exercising a full run without production exports.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/xuri/excelize/v2"
)

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

var (
	buckets   = []string{"FLM COMFICA LIMA", "FLM HUAWEI SUR", "TELEFONICA NOC"}
	tiers     = []string{"Black", "Oro", "Plata", "Clasico"}
	statuses  = []string{"Pendiente", "Iniciado", "Completado", "Cancelado"}
	equipment = []string{"Rectificador", "Grupo Electrogeno", "Banco de Baterias", "Aire Acondicionado"}
	alarms    = []string{"fallo rectificador", "caida de energia", "alta temperatura", "falla ac"}
)

type site struct {
	code string
	tier string
}

func main() {
	out := flag.String("out", "testdata", "output directory for the generated tree")
	nSites := flag.Int("sites", 50, "number of sites in the master")
	nActivities := flag.Int("activities", 200, "number of activities per export")
	seed := flag.Int64("seed", 0, "gofakeit seed, 0 for random")
	flag.Parse()

	gofakeit.Seed(*seed)
	now := time.Now()

	sites := make([]site, *nSites)
	for i := range sites {
		sites[i] = site{
			code: fmt.Sprintf("LM%05d", 10000+i),
			tier: tiers[gofakeit.Number(0, len(tiers)-1)],
		}
	}

	if err := writeSiteMaster(filepath.Join(*out, "DATA", "SITIOS"), sites, now); err != nil {
		log.Fatalf("site master: %v", err)
	}

	prefix := now.Format("02.01")
	if err := writeActivities(filepath.Join(*out, "TOA base"), prefix, sites, *nActivities, now); err != nil {
		log.Fatalf("activities: %v", err)
	}
	if err := writeTasks(filepath.Join(*out, "Autin base", "Autin Tickets"), prefix, sites, *nActivities, now); err != nil {
		log.Fatalf("tasks: %v", err)
	}
	if err := writePauses(filepath.Join(*out, "Autin base", "Autin PR"), prefix, *nActivities/4, now); err != nil {
		log.Fatalf("pauses: %v", err)
	}
	if err := writeIncidents(filepath.Join(*out, "Remedy base"), prefix, sites, *nActivities/2, now); err != nil {
		log.Fatalf("incidents: %v", err)
	}
	if err := writeAlarmCatalog(filepath.Join(*out, "Remedy base")); err != nil {
		log.Fatalf("alarm catalog: %v", err)
	}
	log.Printf("Generated test tree under %s", *out)
}

func writeWorkbook(dir, name string, rows [][]any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(filepath.Join(dir, name))
}

func stamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func pick(options []string) string {
	return options[gofakeit.Number(0, len(options)-1)]
}

func toAny(headers []string) []any {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

func writeActivities(dir, prefix string, sites []site, n int, now time.Time) error {
	rows := [][]any{toAny(activityHeaders)}
	for i := 0; i < n; i++ {
		s := sites[gofakeit.Number(0, len(sites)-1)]
		registered := now.Add(-time.Duration(gofakeit.Number(1, 72)) * time.Hour)
		status := pick(statuses)
		row := make([]any, len(activityHeaders))
		for j := range row {
			row[j] = ""
		}
		set := func(header string, v any) {
			for j, h := range activityHeaders {
				if h == header {
					row[j] = v
					return
				}
			}
		}
		set("Técnico", gofakeit.Name())
		set("Nro TOA", fmt.Sprintf("%08d", 30000000+i))
		set("Número de Petición", fmt.Sprintf("1-%d", gofakeit.Number(100000, 999999)))
		set("Fecha de Registro de actividad TOA", stamp(registered))
		set("Código de Cliente", s.code)
		set("Bucket Inicial", pick(buckets))
		set("ID del Ticket", fmt.Sprintf("INC%07d", 2000000+i))
		set("Nombre Local", gofakeit.City())
		set("Nombre Distrito", gofakeit.City())
		set("Estado TOA", status)
		if status == "Cancelado" {
			set("Fecha Hora de Cancelación", stamp(registered.Add(time.Duration(gofakeit.Number(1, 12))*time.Hour)))
		}
		rows = append(rows, row)
	}
	return writeWorkbook(dir, prefix+" TOA.xlsx", rows)
}

func writeTasks(dir, prefix string, sites []site, n int, now time.Time) error {
	rows := [][]any{{
		"Task Id", "Nro TOA", "Task Status", "Task Category", "Site Id",
		"Createtime", "Complete Time", "Cancel Time", "Arrive Time",
		"Cancel Reason", "Reject Counter", "Com Level 1 Aff Equip",
	}}
	for i := 0; i < n; i++ {
		s := sites[gofakeit.Number(0, len(sites)-1)]
		created := now.Add(-time.Duration(gofakeit.Number(1, 72)) * time.Hour)
		status := pick([]string{"completed", "closed", "canceled", "inprocess"})
		row := []any{
			fmt.Sprintf("CM-%06d", 100000+i),
			fmt.Sprintf("%08d", 30000000+i),
			status,
			"CM",
			s.code,
			stamp(created),
			"", "", "",
			"",
			gofakeit.Number(0, 3),
			pick(equipment),
		}
		switch status {
		case "completed", "closed":
			row[6] = stamp(created.Add(time.Duration(gofakeit.Number(1, 10)) * time.Hour))
			row[8] = stamp(created.Add(time.Duration(gofakeit.Number(10, 59)) * time.Minute))
		case "canceled":
			row[7] = stamp(created.Add(time.Duration(gofakeit.Number(1, 10)) * time.Hour))
			row[9] = pick([]string{"Duplicado", "Clima", "Acceso restringido"})
		}
		rows = append(rows, row)
	}
	return writeWorkbook(dir, prefix+" tickets.xlsx", rows)
}

func writePauses(dir, prefix string, n int, now time.Time) error {
	rows := [][]any{{"Order ID", "Operation Time", "Pause Time", "Reason"}}
	for i := 0; i < n; i++ {
		at := now.Add(-time.Duration(gofakeit.Number(1, 48)) * time.Hour)
		rows = append(rows, []any{
			fmt.Sprintf("CM-%06d", 100000+gofakeit.Number(0, n*4-1)),
			stamp(at),
			pick([]string{"Pause", "Resume"}),
			pick([]string{"Clima", "Sin acceso", "Espera de repuestos"}),
		})
	}
	return writeWorkbook(dir, prefix+" pr.xlsx", rows)
}

func writeIncidents(dir, prefix string, sites []site, n int, now time.Time) error {
	rows := [][]any{
		{"Reporte de incidencias"},
		{""},
		{"ID de la incidencia*+", "Estado*", "Fecha de envío", "Fecha de cierre",
			"Fecha inicio incidente", "Fecha fin incidente", "Tipo de Afectación",
			"Resumen*", "Notas", "Grupo asignado*+"},
	}
	for i := 0; i < n; i++ {
		s := sites[gofakeit.Number(0, len(sites)-1)]
		started := now.Add(-time.Duration(gofakeit.Number(1, 96)) * time.Hour)
		rows = append(rows, []any{
			fmt.Sprintf("INC%07d", 2000000+i),
			pick([]string{"Cerrado", "En curso", "Resuelto"}),
			stamp(started.Add(30 * time.Minute)),
			"",
			stamp(started),
			"",
			pick([]string{"Total", "Parcial"}),
			fmt.Sprintf("%s|%s|%s", gofakeit.City(), pick(alarms), s.code),
			fmt.Sprintf("TOA: %08d", 30000000+gofakeit.Number(0, n-1)),
			pick([]string{"FLM COMFICA", "FLM HUAWEI", "NOC ENERGIA"}),
		})
	}
	return writeWorkbook(dir, prefix+" incidencias.xlsx", rows)
}

func writeAlarmCatalog(dir string) error {
	rows := [][]any{{"Alarma", "Tipo"}}
	for _, a := range alarms {
		rows = append(rows, []any{a, pick([]string{"TOTAL", "PARCIAL"})})
	}
	return writeWorkbook(dir, "alarmas.xlsx", rows)
}

func writeSiteMaster(dir string, sites []site, now time.Time) error {
	base := [][]any{{"Codigo Unico", "Nombre", "Proveedor FLM", "priorizacion", "Departamento", "Tipo_Estacion"}}
	swap := [][]any{{"Codigo Unico_Swap", "Codigo Estacion_Swap", "Fecha Fin Swap", "Alarmas Activas Nodo"}}
	tss := [][]any{{"Codigo Unico", "Fecha TSS"}}
	for i, s := range sites {
		base = append(base, []any{
			s.code, gofakeit.City(),
			pick([]string{"COMFICA", "HUAWEI", "TELEFONICA"}),
			s.tier,
			pick([]string{"Lima", "Puno", "Cañete", "Arequipa", "Cusco"}),
			pick([]string{"Urbana", "Rural"}),
		})
		if i%3 == 0 {
			swap = append(swap, []any{
				s.code, fmt.Sprintf("EST-%d", i),
				now.AddDate(0, 0, -gofakeit.Number(1, 30)).Format("2006-01-02"),
				gofakeit.Number(0, 4),
			})
		}
		if i%4 == 0 {
			tss = append(tss, []any{
				s.code,
				now.AddDate(0, 0, -gofakeit.Number(1, 30)).Format("2006-01-02"),
			})
		}
	}
	if err := writeWorkbook(dir, "sitios.xlsx", base); err != nil {
		return err
	}
	if err := writeWorkbook(dir, "swap.xlsx", swap); err != nil {
		return err
	}
	return writeWorkbook(dir, "tss.xlsx", tss)
}
