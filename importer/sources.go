package importer

import "errors"

// SourceKind tags each import batch with its originating system.
type SourceKind string

const (
	// SourceActivities field-service activity exports (TOA)
	SourceActivities SourceKind = "activities"
	// SourceTasks secondary ticketing system exports (Autin)
	SourceTasks SourceKind = "tasks"
	// SourcePauses pause/resume event exports (Autin PR)
	SourcePauses SourceKind = "pauses"
	// SourceIncidents incident-management exports (Remedy)
	SourceIncidents SourceKind = "incidents"
)

// ErrMissingColumns marks a batch that does not carry the required
// column set for its source kind. Such a batch is skipped, never fatal.
var ErrMissingColumns = errors.New("batch is missing required columns")

// ErrNoSourceFiles marks a directory with none of the expected inputs.
var ErrNoSourceFiles = errors.New("no source files found")

// requiredActivityColumns is the fixed column contract of an activity
// export. A file missing any of them is rejected as a whole.
var requiredActivityColumns = []string{
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

// incidentColumns maps the incident export headers to canonical names.
// The export carries two banner rows before the header row.
var incidentColumns = []struct {
	Header    string
	Canonical string
}{
	{"ID de la incidencia*+", "ID_incidencia"},
	{"Estado*", "Estado"},
	{"Fecha de envío", "Fecha_envio"},
	{"Fecha de cierre", "Fecha_cierre"},
	{"Fecha inicio incidente", "Fecha_inicio_incidente"},
	{"Fecha fin incidente", "Fecha_fin_incidente"},
	{"Tipo de Afectación", "Tipo_afectacion"},
	{"Resumen*", "Resumen"},
	{"Notas", "Notas"},
	{"Grupo asignado*+", "Grupo_asignado"},
}

// IncidentSeqColumn carries the ingestion-order sequence number of each
// incident row. Persisted rows get 0 so a freshly parsed file always
// wins on merge.
const IncidentSeqColumn = "orden_archivo"

// SourceFileColumn tags every row with its originating file.
const SourceFileColumn = "origen"
