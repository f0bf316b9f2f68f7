package database

// Persisted table names. The consolidated table is rebuilt on every run;
// the source tables accumulate across runs via merge.
const (
	TableActivities   = "tickets_toa"
	TableTasks        = "tickets_autin"
	TablePauses       = "tickets_pr"
	TableSites        = "info_sitios"
	TableIncidents    = "remedy_base"
	TableConsolidated = "tabla_consolidada"
)
