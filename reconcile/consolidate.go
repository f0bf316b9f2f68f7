package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"ticketflow/classify"
	"ticketflow/database"
	"ticketflow/dataset"
)

// consolidatedColumns is the column contract of the consolidated table,
// in report order.
var consolidatedColumns = []string{
	"ID_TOA", "Creacion_TOA", "Cierre_TOA", "Tipo_Actividad", "Numero_Peticion",
	"ID_Ticket", "SLA_Inicio", "SLA_Fin", "Coordenada_X", "Coordenada_Y",
	"Notas", "Site_ID", "Nombre_Local", "Empresa", "Bucket",
	"Inicio_PR1", "Fin_PR1", "Motivo_PR1",
	"Inicio_PR2", "Fin_PR2", "Motivo_PR2",
	"Inicio_PR3", "Fin_PR3", "Motivo_PR3",
	"Inicio_PR4", "Fin_PR4", "Motivo_PR4",
	"Departamento", "Provincia", "Distrito", "Tipo_Local", "Tipo_Atencion",
	"Zona", "Tipo_Zona", "Tipo_Estacion", "SLA", "Ubigeo_TOA", "Estado_TOA",
	"Proactivo", "Marcha_Blanca", "Responsable", "Test",
	"Fecha_Fin_Swap", "Alarmas_Activas", "Dias_Swap", "Fecha_TSS", "Dias_TSS",
	"Autin_ID_1", "Estado_1", "Motivo_Cancel_1", "Hora_PR_1", "Motivo_PR_1", "Estado_PR_1",
	"Autin_ID_2", "Estado_2", "Motivo_Cancel_2", "Hora_PR_2", "Motivo_PR_2", "Estado_PR_2",
	"Autin_ID_3", "Estado_3", "Motivo_Cancel_3", "Hora_PR_3", "Motivo_PR_3", "Estado_PR_3",
	"Tiempo_TOA_Autin",
	"Tarea_Abastecimiento", "Estado_Abastecimiento", "Hora_Creacion_Abastecimiento", "Dias_Abastecimiento",
	"Rechazos", "Equipo_Afectado", "Duracion_Horas",
	"Reiteradas", "TOA_Reiterado", "Etiqueta",
}

// activityCarryover maps activity-table columns straight into their
// consolidated names.
var activityCarryover = [][2]string{
	{"Subtipo_de_Actividad", "Tipo_Actividad"},
	{"ID_del_Ticket", "ID_Ticket"},
	{"SLA_Inicio", "SLA_Inicio"},
	{"SLA_Fin", "SLA_Fin"},
	{"Direccion_Polar_X", "Coordenada_X"},
	{"Direccion_Polar_Y", "Coordenada_Y"},
	{"Notas", "Notas"},
	{"Inicio_PR1", "Inicio_PR1"}, {"Fin_PR1", "Fin_PR1"}, {"Motivo_PR1", "Motivo_PR1"},
	{"Inicio_PR2", "Inicio_PR2"}, {"Fin_PR2", "Fin_PR2"}, {"Motivo_PR2", "Motivo_PR2"},
	{"Inicio_PR3", "Inicio_PR3"}, {"Fin_PR3", "Fin_PR3"}, {"Motivo_PR3", "Motivo_PR3"},
	{"Inicio_PR4", "Inicio_PR4"}, {"Fin_PR4", "Fin_PR4"}, {"Motivo_PR4", "Motivo_PR4"},
	{"Estado_TOA", "Estado_TOA"},
	{"Bucket_Inicial", "Bucket"},
}

// siteCarryover maps site-master columns into their consolidated names.
var siteCarryover = [][2]string{
	{"Nombre_Local", "Nombre_Local"},
	{"Departamento", "Departamento"},
	{"Provincia", "Provincia"},
	{"Distrito", "Distrito"},
	{"Tipo_Local", "Tipo_Local"},
	{"Atencion", "Tipo_Atencion"},
	{"Zona", "Zona"},
	{"Tipo_Zona_FLM", "Tipo_Zona"},
	{"Tipo_Estacion", "Tipo_Estacion"},
	{"SLA", "SLA"},
	{"ubigeotoa", "Ubigeo_TOA"},
	{"Fecha_Fin_Swap", "Fecha_Fin_Swap"},
	{"Alarmas_Activas_Nodo", "Alarmas_Activas"},
	{"Fecha_TSS", "Fecha_TSS"},
}

// Consolidate joins the activity table against the site master and the
// ranked secondary tasks, derives the consolidation business columns
// and returns the consolidated table, newest activity first.
func Consolidate(activities []Activity, sites map[string]Site, ranked RankedTasks) *dataset.Table {
	t := dataset.NewTable(database.TableConsolidated, consolidatedColumns...)

	repeatItems := make([]classify.RepeatItem, 0, len(activities))
	type rowCtx struct {
		row dataset.Row
		act Activity
	}
	rows := make([]rowCtx, 0, len(activities))

	for _, a := range activities {
		row := dataset.Row{}
		row["ID_TOA"] = a.ID
		if a.HasRegister {
			row["Creacion_TOA"] = a.Registered
		}
		if a.HasCancelled {
			row["Cierre_TOA"] = a.Cancelled
		}
		row["Numero_Peticion"] = a.RequestID
		row["Site_ID"] = a.SiteCode
		for _, m := range activityCarryover {
			row[m[1]] = a.Row[m[0]]
		}

		site, hasSite := sites[a.SiteCode]
		if hasSite {
			for _, m := range siteCarryover {
				row[m[1]] = site.Row[m[0]]
			}
		}

		row["Empresa"] = vendorFromBucket(a.Bucket)
		row["Marcha_Blanca"] = pilotRegionFlag(site)
		row["Proactivo"] = proactiveFlag(a.Notes)
		row["Responsable"] = responsibleParty(a.Bucket)
		row["Test"] = testFlag(a.Notes)

		if hasSite && a.HasRegister && site.HasSwapEnd {
			if days := int64(a.Registered.Sub(site.SwapEnd).Hours() / 24); days > 0 {
				row["Dias_Swap"] = days
			}
		}
		if tss, ok := timeAt(site.Row, "Fecha_TSS"); hasSite && ok && a.HasRegister {
			if days := int64(a.Registered.Sub(tss).Hours() / 24); days > 0 {
				row["Dias_TSS"] = days
			}
		}

		slots := CollapseSlots(ranked[a.ID])
		fillSlotColumns(row, slots)
		if len(slots) > 0 {
			first := slots[0]
			if first.HasCreated && a.HasRegister {
				row["Tiempo_TOA_Autin"] = first.Created.Sub(a.Registered).Minutes()
			}
			row["Etiqueta"] = classify.StatusConsistency(a.Status, first.Status)
			repeatItems = append(repeatItems, classify.RepeatItem{
				ID:         a.ID,
				Site:       a.SiteCode,
				Equipment:  first.AffectedEquipment,
				Registered: a.Registered,
				HasTime:    a.HasRegister,
			})
		} else {
			row["Etiqueta"] = classify.StatusConsistency(a.Status, "")
		}

		rows = append(rows, rowCtx{row: row, act: a})
	}

	links := classify.DetectRepeats(repeatItems)
	for _, rc := range rows {
		if link, ok := links[rc.act.ID]; ok {
			rc.row["Reiteradas"] = classify.LabelRepeat
			rc.row["TOA_Reiterado"] = link.Predecessor
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].act, rows[j].act
		switch {
		case a.HasRegister && b.HasRegister:
			return a.Registered.After(b.Registered)
		case a.HasRegister:
			return true
		default:
			return false
		}
	})
	for _, rc := range rows {
		t.Append(rc.row)
	}
	return t
}

func fillSlotColumns(row dataset.Row, slots []TaskSlot) {
	for i, slot := range slots {
		n := i + 1
		row[fmt.Sprintf("Autin_ID_%d", n)] = slot.ID
		row[fmt.Sprintf("Estado_%d", n)] = slot.Status
		row[fmt.Sprintf("Motivo_Cancel_%d", n)] = slot.CancelReason
		if slot.HasPause {
			row[fmt.Sprintf("Hora_PR_%d", n)] = slot.PauseAt
		}
		row[fmt.Sprintf("Motivo_PR_%d", n)] = slot.PauseReason
		row[fmt.Sprintf("Estado_PR_%d", n)] = slot.PauseState
	}
	if len(slots) == 0 {
		return
	}

	// Slot-1 extras feed the report's numeric columns.
	first := slots[0]
	row["Rechazos"] = first.RejectCounter
	row["Equipo_Afectado"] = first.AffectedEquipment
	if first.HasDuration {
		row["Duracion_Horas"] = first.DurationHours
	}
	if first.SupplyTaskID != "" {
		row["Tarea_Abastecimiento"] = first.SupplyTaskID
		row["Estado_Abastecimiento"] = first.SupplyStatus
		if first.HasSupplyCreated {
			row["Hora_Creacion_Abastecimiento"] = first.SupplyCreated
		}
		if first.HasSupplyDays {
			row["Dias_Abastecimiento"] = first.SupplyDays
		}
	}
}

func vendorFromBucket(bucket string) string {
	b := strings.ToLower(bucket)
	switch {
	case strings.Contains(b, "comfica"):
		return "comfica"
	case strings.Contains(b, "huawei"):
		return "huawei"
	default:
		return ""
	}
}

// pilotRegionFlag marks sites still under the white-run rollout.
func pilotRegionFlag(site Site) string {
	if dataset.Str(site.Row, "Departamento") == "Puno" || dataset.Str(site.Row, "Provincia") == "Cañete" {
		return "MB"
	}
	return ""
}

func proactiveFlag(notes string) string {
	if strings.Contains(strings.ToLower(notes), "proactivo") {
		return "Proactivo"
	}
	return ""
}

func responsibleParty(bucket string) string {
	b := strings.ToLower(bucket)
	if strings.Contains(b, "comfica") || strings.Contains(b, "huawei") {
		return "FLM"
	}
	return "TDP"
}

// testFlag marks activities whose notes identify them as test dispatches.
func testFlag(notes string) string {
	n := strings.ToLower(notes)
	if strings.Contains(n, "test") || strings.Contains(n, "ticket de prueba") {
		return "TEST"
	}
	return ""
}
