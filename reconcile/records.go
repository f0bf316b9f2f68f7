package reconcile

import (
	"time"

	"ticketflow/dataset"
)

// Typed views over the persisted source tables. Decoding is tolerant:
// a column may hold a parsed time.Time or its persisted string form
// depending on whether the table went through coercion this run.

// Activity is one field-service dispatch from the primary system.
type Activity struct {
	ID           string // normalized 8-digit activity number
	TicketID     string
	RequestID    string
	SiteCode     string
	Status       string
	Notes        string
	Bucket       string
	Registered   time.Time
	Cancelled    time.Time
	HasRegister  bool
	HasCancelled bool
	Row          dataset.Row
}

// Task is one work item in the secondary ticketing system.
type Task struct {
	ID                 string
	Category           string
	Status             string
	CancelReason       string
	SiteID             string
	ActivityRef        string
	AffectedEquipment  string
	RejectCounter      int64
	Created            time.Time
	Completed          time.Time
	Cancelled          time.Time
	Arrived            time.Time
	HasCreated         bool
	HasCompleted       bool
	HasCancelled       bool
	HasArrived         bool
	FaultSpeciality    string
	FaultSubSpeciality string
	FaultCause         string
	LeaveObservations  string
	ActionDetail       string
}

// PauseEvent is one pause/resume record for a task.
type PauseEvent struct {
	TaskID string
	At     time.Time
	HasAt  bool
	State  string
	Reason string
}

// Site is one site-master record.
type Site struct {
	Code       string
	Provider   string
	Tier       string
	SwapEnd    time.Time
	HasSwapEnd bool
	Row        dataset.Row
}

// Incident is one record from the incident-management system.
type Incident struct {
	ID            string
	Status        string
	Summary       string
	Notes         string
	AssignedGroup string
	Submitted     time.Time
	Started       time.Time
	Ended         time.Time
	HasSubmitted  bool
	HasStarted    bool
	HasEnded      bool
	Row           dataset.Row
}

func timeAt(r dataset.Row, column string) (time.Time, bool) {
	if ts, ok := dataset.Time(r, column); ok {
		return ts, true
	}
	if s := dataset.Str(r, column); s != "" {
		if ts, ok := dataset.ParseTimestamp(s); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// DecodeTasks maps the persisted task table into typed records.
func DecodeTasks(t *dataset.Table) []Task {
	out := make([]Task, 0, len(t.Rows))
	for _, r := range t.Rows {
		task := Task{
			ID:                 dataset.Str(r, "Task_Id"),
			Category:           dataset.Str(r, "Task_Category"),
			Status:             dataset.Str(r, "Task_Status"),
			CancelReason:       dataset.Str(r, "Cancel_Reason"),
			SiteID:             dataset.Str(r, "Site_Id"),
			ActivityRef:        dataset.Str(r, "Number_OS_SIOM"),
			AffectedEquipment:  dataset.Str(r, "Com_Level_1_Aff_Equip"),
			FaultSpeciality:    dataset.Str(r, "Com_Fault_Speciality"),
			FaultSubSpeciality: dataset.Str(r, "Com_Fault_Sub_Speciality"),
			FaultCause:         dataset.Str(r, "Com_Fault_Cause"),
			LeaveObservations:  dataset.Str(r, "Leave_Observations"),
			ActionDetail:       dataset.Str(r, "Detalle_de_actuación_realizada"),
		}
		task.RejectCounter, _ = dataset.Int(r, "Reject_Counter")
		task.Created, task.HasCreated = timeAt(r, "Createtime")
		task.Completed, task.HasCompleted = timeAt(r, "Complete_Time")
		task.Cancelled, task.HasCancelled = timeAt(r, "Cancel_Time")
		task.Arrived, task.HasArrived = timeAt(r, "Arrive_Time")
		out = append(out, task)
	}
	return out
}

// DecodePauses maps the persisted pause table into typed events.
func DecodePauses(t *dataset.Table) []PauseEvent {
	out := make([]PauseEvent, 0, len(t.Rows))
	for _, r := range t.Rows {
		e := PauseEvent{
			TaskID: dataset.Str(r, "Order_ID"),
			State:  dataset.Str(r, "Pause_Time"),
			Reason: dataset.Str(r, "Reason"),
		}
		e.At, e.HasAt = timeAt(r, "Operation_Time")
		out = append(out, e)
	}
	return out
}

// DecodeActivities maps the persisted activity table into typed records.
func DecodeActivities(t *dataset.Table) []Activity {
	out := make([]Activity, 0, len(t.Rows))
	for _, r := range t.Rows {
		a := Activity{
			ID:        dataset.Str(r, "Nro_TOA"),
			TicketID:  dataset.Str(r, "ID_del_Ticket"),
			RequestID: dataset.Str(r, "Número_de_Petición"),
			SiteCode:  dataset.Str(r, "Código_de_Cliente"),
			Status:    dataset.Str(r, "Estado_TOA"),
			Notes:     dataset.Str(r, "Notas"),
			Bucket:    dataset.Str(r, "Bucket_Inicial"),
			Row:       r,
		}
		a.Registered, a.HasRegister = timeAt(r, "Fecha_de_Registro_de_actividad_TOA")
		a.Cancelled, a.HasCancelled = timeAt(r, "Fecha_Hora_de_Cancelación")
		out = append(out, a)
	}
	return out
}

// DecodeSites maps the site-master table into typed records, indexed by
// the unique site code.
func DecodeSites(t *dataset.Table) map[string]Site {
	out := make(map[string]Site, len(t.Rows))
	for _, r := range t.Rows {
		s := Site{
			Code:     dataset.Str(r, "Codigo_Unico"),
			Provider: dataset.Str(r, "Proveedor_FLM"),
			Tier:     dataset.Str(r, "priorizacion"),
			Row:      r,
		}
		if s.Code == "" {
			continue
		}
		s.SwapEnd, s.HasSwapEnd = timeAt(r, "Fecha_Fin_Swap")
		out[s.Code] = s
	}
	return out
}

// DecodeIncidents maps the persisted incident table into typed records.
func DecodeIncidents(t *dataset.Table) []Incident {
	out := make([]Incident, 0, len(t.Rows))
	for _, r := range t.Rows {
		in := Incident{
			ID:            dataset.Str(r, "ID_incidencia"),
			Status:        dataset.Str(r, "Estado"),
			Summary:       dataset.Str(r, "Resumen"),
			Notes:         dataset.Str(r, "Notas"),
			AssignedGroup: dataset.Str(r, "Grupo_asignado"),
			Row:           r,
		}
		in.Submitted, in.HasSubmitted = timeAt(r, "Fecha_envio")
		in.Started, in.HasStarted = timeAt(r, "Fecha_inicio_incidente")
		in.Ended, in.HasEnded = timeAt(r, "Fecha_fin_incidente")
		out = append(out, in)
	}
	return out
}
