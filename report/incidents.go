package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"ticketflow/classify"
	"ticketflow/dataset"
	"ticketflow/reconcile"
)

// incidentColumns is the column contract of the incident
// reconciliation report, in display order.
var incidentColumns = []string{
	"ID_incidencia", "Estado", "Resumen", "Grupo_asignado",
	"Fecha_envio", "Fecha_inicio_incidente", "Fecha_fin_incidente",
	"Alarma", "Tipo",
	"ID_Sitio", "Razones_Sin_TOA", "TOA_notas",
	"Nro_TOA", "Estado_TOA",
	"Nro_TOA_1", "Remedy_1", "Nro_TOA_2", "Remedy_2",
	"Proveedor_FLM", "priorizacion", "Tipo_Estacion",
	"Tiempo de Contención", "Cumplimiento de Contención", "Tiempo de envío",
	"Tiempo_cancelación_Autin 1", "Tiempo_cancelación_Autin 2", "Tiempo_cancelación_Autin 3",
	"Tiempo_cancelación_TOA", "Tiempo_cancelación_mínimo",
	"Error Contención", "rango de cancelación",
	"Clasificación SWAP",
	"Cantidad_Tickets_Abastecimiento", "Lista_Abastecimiento", "¿Hubo Abastecimiento?",
	"¿El técnico llego al lugar?", "¿Relacionado con Fallo AC?",
	"¿Hubo acción en el GE?", "¿Hubo acción en las baterías?",
	"¿Hubo acción en el ITM?", "¿Hubo acción en los breakers?",
	"Detectamos atención",
}

// detectorColumns pairs each free-text detector answer with its report
// column, in the same order classify.ActionDetectors runs them.
var detectorColumns = []string{
	"¿Hubo acción en el GE?",
	"¿Hubo acción en las baterías?",
	"¿Hubo acción en el ITM?",
	"¿Hubo acción en los breakers?",
}

// WriteIncidentReport renders the reconciled incidents into the review
// workbook.
func WriteIncidentReport(path string, matches []reconcile.IncidentMatch) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newReportStyles(f)
	if err != nil {
		return err
	}

	for i, c := range incidentColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, c)
	}
	for i, m := range matches {
		if err := writeRow(f, st, incidentColumns, incidentRow(m), i+2); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func incidentRow(m reconcile.IncidentMatch) dataset.Row {
	row := dataset.Row{}
	row["ID_incidencia"] = m.Incident.ID
	row["Estado"] = m.Incident.Status
	row["Resumen"] = m.Incident.Summary
	row["Grupo_asignado"] = m.Incident.AssignedGroup
	row["Alarma"] = m.Alarm.Alarm
	row["Tipo"] = m.Alarm.Type
	row["ID_Sitio"] = m.SiteID
	row["Razones_Sin_TOA"] = m.Reason
	row["TOA_notas"] = m.NotesRef
	row["Proveedor_FLM"] = m.Provider
	row["priorizacion"] = m.Tier
	row["Tipo_Estacion"] = m.StationType
	row["Cumplimiento de Contención"] = m.Containment
	row["Error Contención"] = m.CancelTiming
	row["rango de cancelación"] = m.CancelBucket
	row["Clasificación SWAP"] = m.SwapClass
	row["¿El técnico llego al lugar?"] = m.TechnicianArrived
	row["¿Relacionado con Fallo AC?"] = m.ACFailureRelated
	row["Detectamos atención"] = m.Attention

	if m.Incident.HasSubmitted {
		row["Fecha_envio"] = m.Incident.Submitted
	}
	if m.Incident.HasStarted {
		row["Fecha_inicio_incidente"] = m.Incident.Started
	}
	if m.Incident.HasEnded {
		row["Fecha_fin_incidente"] = m.Incident.Ended
	}

	if m.Activity != nil {
		row["Nro_TOA"] = m.Activity.ID
		row["Estado_TOA"] = m.Activity.Status
	}
	if len(m.Candidates) > 0 {
		row["Nro_TOA_1"] = m.Candidates[0].ActivityID
		row["Remedy_1"] = m.Candidates[0].RequestID
	}
	if len(m.Candidates) > 1 {
		row["Nro_TOA_2"] = m.Candidates[1].ActivityID
		row["Remedy_2"] = m.Candidates[1].RequestID
	}

	if m.HasBudget {
		row["Tiempo de Contención"] = m.BudgetHours
	}
	if m.HasDispatch {
		row["Tiempo de envío"] = m.DispatchHours * 60
	}
	for i, col := range []string{"Tiempo_cancelación_Autin 1", "Tiempo_cancelación_Autin 2", "Tiempo_cancelación_Autin 3"} {
		if m.HasCancelHours[i] {
			row[col] = m.CancelHours[i]
		}
	}
	if m.HasOwnCancel {
		row["Tiempo_cancelación_TOA"] = m.OwnCancelHours
	}
	if m.HasMinCancel {
		row["Tiempo_cancelación_mínimo"] = m.MinCancelHours
	}

	if m.Supply.Known {
		row["Cantidad_Tickets_Abastecimiento"] = int64(m.Supply.Count)
		row["Lista_Abastecimiento"] = strings.Join(m.Supply.TaskIDs, ", ")
		if m.Supply.Occurred {
			row["¿Hubo Abastecimiento?"] = classify.FlagYes
		} else {
			row["¿Hubo Abastecimiento?"] = classify.FlagNo
		}
	}

	for i, col := range detectorColumns {
		if i < len(m.DetectorAnswers) {
			row[col] = m.DetectorAnswers[i]
		}
	}
	return row
}
