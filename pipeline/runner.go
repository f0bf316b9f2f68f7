// Package pipeline wires the whole reconciliation run: source file
// ingestion, merge and type coercion, persistence, cross-source
// reconciliation, classification and report rendering.
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ticketflow/database"
	"ticketflow/dataset"
	"ticketflow/extractors"
	"ticketflow/importer"
	"ticketflow/internal/config"
	"ticketflow/reconcile"
	"ticketflow/report"
)

// Runner executes one full pipeline run against the configured store.
type Runner struct {
	cfg      *config.Config
	store    *database.Store
	registry *database.MetadataRegistry
	resolver dataset.TypeResolver
	now      func() time.Time
}

// NewRunner opens the store and builds the column-type resolver for the
// configured run mode.
func NewRunner(cfg *config.Config) (*Runner, error) {
	store, err := database.Open(cfg.Resolve(cfg.DatabasePath), database.DefaultDBConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	registry, err := database.NewMetadataRegistry(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open type registry: %w", err)
	}

	var resolver dataset.TypeResolver
	if cfg.Interactive {
		resolver = &dataset.StdinResolver{In: os.Stdin, Out: os.Stdout}
	} else {
		resolver = &dataset.DefaultsResolver{
			Defaults: columnDefaults,
			Fallback: cfg.DefaultColumnType,
		}
	}

	return &Runner{
		cfg:      cfg,
		store:    store,
		registry: registry,
		resolver: resolver,
		now:      time.Now,
	}, nil
}

// Close releases the store.
func (r *Runner) Close() error {
	return r.store.Close()
}

// source describes one ingestible file category.
type source struct {
	table     string
	dir       string
	key       dataset.Key
	discover  func(dir string) ([]string, error)
	read      func(dir, file string, seq int) (dataset.Batch, error)
	transform func(dataset.Row)
}

func (r *Runner) sources() []source {
	cfg := r.cfg
	return []source{
		{
			table:    database.TableActivities,
			dir:      cfg.Resolve(cfg.ActivityDir),
			key:      dataset.Key{Column: "Nro_TOA"},
			discover: importer.DiscoverFiles,
			read:     importer.ReadActivityBatch,
			transform: func(row dataset.Row) {
				row["Nro_TOA"] = extractors.NormalizeActivityID(row["Nro_TOA"])
			},
		},
		{
			table:    database.TableTasks,
			dir:      cfg.Resolve(cfg.TaskDir),
			key:      dataset.Key{Column: "Task_Id"},
			discover: importer.DiscoverFiles,
			read:     importer.ReadTaskBatch,
		},
		{
			table:    database.TablePauses,
			dir:      cfg.Resolve(cfg.PauseDir),
			key:      dataset.Key{Column: "clave_evento", Parts: []string{"Order_ID", "Operation_Time"}},
			discover: importer.DiscoverFiles,
			read:     importer.ReadPauseBatch,
		},
		{
			table:    database.TableIncidents,
			dir:      cfg.Resolve(cfg.IncidentDir),
			key:      dataset.Key{Column: "ID_incidencia"},
			discover: importer.DiscoverIncidentFiles,
			read:     importer.ReadIncidentBatch,
		},
	}
}

// Run executes the pipeline end to end. Precondition failures surface
// before any table is written; afterwards each table write is its own
// atomic unit.
func (r *Runner) Run() error {
	runID := uuid.NewString()
	start := r.now()
	log.Printf("Run %s: starting", runID)

	// The site master is a fatal precondition: without the full trio
	// nothing downstream can be classified.
	siteTable, err := importer.ReadSiteMaster(r.cfg.Resolve(r.cfg.SiteDir))
	if err != nil {
		return fmt.Errorf("run %s: site master: %w", runID, err)
	}

	for _, src := range r.sources() {
		if err := r.ingest(runID, src); err != nil {
			return fmt.Errorf("run %s: %s: %w", runID, src.table, err)
		}
	}

	if err := r.persist(siteTable); err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	log.Printf("Run %s: site master ready, %d sites", runID, len(siteTable.Rows))

	r.loadAlarmCatalog(runID)

	consolidated, matches, err := r.reconcileAll(runID)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}

	if r.cfg.SkipReports {
		log.Printf("Run %s: report rendering disabled", runID)
	} else if err := r.writeReports(runID, consolidated, matches); err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}

	log.Printf("Run %s: done in %s", runID, r.now().Sub(start).Round(time.Millisecond))
	return nil
}

// ingest merges every new file of one source category into its
// persisted table and archives the processed files.
func (r *Runner) ingest(runID string, src source) error {
	files, err := src.discover(src.dir)
	if err != nil {
		return err
	}

	prior, err := r.store.ReadTable(src.table)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if prior == nil {
			return fmt.Errorf("%w: no files in %s and no persisted table", importer.ErrNoSourceFiles, src.dir)
		}
		log.Printf("Run %s: %s: no new files, keeping %d persisted rows", runID, src.table, len(prior.Rows))
		return nil
	}

	var batches []dataset.Batch
	var processed []string
	for i, file := range files {
		batch, err := src.read(src.dir, file, i+1)
		if err != nil {
			if errors.Is(err, importer.ErrMissingColumns) {
				log.Printf("Run %s: %s: skipping %s: %v", runID, src.table, file, err)
				continue
			}
			return err
		}
		if src.transform != nil {
			for _, row := range batch.Table.Rows {
				src.transform(row)
			}
		}
		batches = append(batches, batch)
		processed = append(processed, file)
	}

	if len(batches) == 0 {
		if prior == nil {
			return fmt.Errorf("%w: every file in %s was rejected", importer.ErrNoSourceFiles, src.dir)
		}
		log.Printf("Run %s: %s: all new files rejected, keeping %d persisted rows", runID, src.table, len(prior.Rows))
		return nil
	}

	merged, err := dataset.Merge(prior, batches, src.key)
	if err != nil {
		return err
	}
	if err := r.persist(merged); err != nil {
		return err
	}
	log.Printf("Run %s: %s: %d files merged into %d rows", runID, src.table, len(processed), len(merged.Rows))

	if err := importer.ArchiveProcessed(src.dir, processed); err != nil {
		return err
	}
	importer.CleanupOld(src.dir, r.cfg.RetentionDays)
	return nil
}

// persist coerces a table against the type registry and replaces it in
// the store.
func (r *Runner) persist(t *dataset.Table) error {
	coerceReport, err := dataset.Coerce(t, r.registry, r.resolver)
	if err != nil {
		return err
	}
	for column, ct := range coerceReport.Resolved {
		log.Printf("Table %s: column %s registered as %s", t.Name, column, ct)
	}
	for column, samples := range coerceReport.Unparsed {
		log.Printf("Table %s: column %s: unparseable values (e.g. %q)", t.Name, column, samples[0])
	}

	types, err := r.registry.TableTypes(t.Name)
	if err != nil {
		return err
	}
	return r.store.ReplaceTable(t, types)
}

// loadAlarmCatalog refreshes the alarm reference table from the
// workbook next to the incident exports. A missing workbook keeps the
// previously persisted catalog.
func (r *Runner) loadAlarmCatalog(runID string) {
	path := filepath.Join(r.cfg.Resolve(r.cfg.IncidentDir), "alarmas.xlsx")
	catalog, err := importer.ReadAlarmCatalog(path)
	if err != nil {
		log.Printf("Run %s: alarm catalog not refreshed: %v", runID, err)
		return
	}
	types := map[string]dataset.ColumnType{
		"Alarma": dataset.TypeText,
		"Tipo":   dataset.TypeText,
	}
	if err := r.store.ReplaceTable(catalog, types); err != nil {
		log.Printf("Run %s: alarm catalog not persisted: %v", runID, err)
	}
}

// reconcileAll reads the persisted source tables back, builds the
// consolidated table and the reconciled incident list, and persists the
// consolidated table.
func (r *Runner) reconcileAll(runID string) (*dataset.Table, []reconcile.IncidentMatch, error) {
	activities, tasks, pauses, sites, incidents, err := r.decodeTables()
	if err != nil {
		return nil, nil, err
	}

	ranked := reconcile.RankTasks(tasks, pauses)
	consolidated := reconcile.Consolidate(activities, sites, ranked)
	if err := r.store.ReplaceTable(consolidated, consolidatedTypes); err != nil {
		return nil, nil, err
	}
	log.Printf("Run %s: consolidated %d activities", runID, len(consolidated.Rows))

	catalog, err := r.store.AlarmCatalog()
	if err != nil {
		return nil, nil, err
	}
	matches := reconcile.JoinIncidents(reconcile.IncidentJoinInputs{
		Incidents:    incidents,
		Activities:   activities,
		Sites:        sites,
		Ranked:       ranked,
		AlarmCatalog: catalog,
		Supplies:     reconcile.SupplyTaskList(tasks),
		MinStart:     r.cfg.IncidentHorizon(r.now()),
	})
	log.Printf("Run %s: reconciled %d incidents", runID, len(matches))

	return consolidated, matches, nil
}

func (r *Runner) decodeTables() ([]reconcile.Activity, []reconcile.Task, []reconcile.PauseEvent, map[string]reconcile.Site, []reconcile.Incident, error) {
	read := func(name string) (*dataset.Table, error) {
		t, err := r.store.ReadTable(name)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("table %s is missing", name)
		}
		return t, nil
	}

	actTable, err := read(database.TableActivities)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	taskTable, err := read(database.TableTasks)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	pauseTable, err := read(database.TablePauses)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	siteTable, err := read(database.TableSites)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	incidentTable, err := read(database.TableIncidents)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	return reconcile.DecodeActivities(actTable),
		reconcile.DecodeTasks(taskTable),
		reconcile.DecodePauses(pauseTable),
		reconcile.DecodeSites(siteTable),
		reconcile.DecodeIncidents(incidentTable),
		nil
}

func (r *Runner) writeReports(runID string, consolidated *dataset.Table, matches []reconcile.IncidentMatch) error {
	reportDir := r.cfg.Resolve(r.cfg.ReportDir)

	consolidatedPath := filepath.Join(reportDir, r.cfg.ConsolidatedReportFile)
	if err := report.WriteConsolidated(consolidatedPath, consolidated); err != nil {
		return err
	}
	if err := report.WriteVendorReports(reportDir, consolidated); err != nil {
		return err
	}

	incidentPath := filepath.Join(r.cfg.Resolve(r.cfg.IncidentDir), r.cfg.IncidentReportFile)
	if err := report.WriteIncidentReport(incidentPath, matches); err != nil {
		return err
	}
	log.Printf("Run %s: reports written to %s", runID, reportDir)
	return nil
}

// columnDefaults classifies the source columns whose types are known
// up front, so unattended runs never fall back to TEXT for them.
var columnDefaults = map[string]dataset.ColumnType{
	// activity exports
	"Fecha_de_Cita":                      dataset.TypeDatetime,
	"SLA_Inicio":                         dataset.TypeDatetime,
	"SLA_Fin":                            dataset.TypeDatetime,
	"Hora_de_asignación_de_actividad":    dataset.TypeDatetime,
	"Fecha_de_Registro_de_actividad_TOA": dataset.TypeDatetime,
	"Fecha_Hora_de_Cancelación":          dataset.TypeDatetime,
	"Fecha_de_Inicio_PINT":               dataset.TypeDatetime,
	"Inicio_PR1":                         dataset.TypeDatetime,
	"Fin_PR1":                            dataset.TypeDatetime,
	"Inicio_PR2":                         dataset.TypeDatetime,
	"Fin_PR2":                            dataset.TypeDatetime,
	"Inicio_PR3":                         dataset.TypeDatetime,
	"Fin_PR3":                            dataset.TypeDatetime,
	"Inicio_PR4":                         dataset.TypeDatetime,
	"Fin_PR4":                            dataset.TypeDatetime,
	// task exports
	"Createtime":     dataset.TypeDatetime,
	"Complete_Time":  dataset.TypeDatetime,
	"Cancel_Time":    dataset.TypeDatetime,
	"Arrive_Time":    dataset.TypeDatetime,
	"Reject_Counter": dataset.TypeInteger,
	// pause exports
	"Operation_Time": dataset.TypeDatetime,
	// incident exports
	"Fecha_envio":            dataset.TypeDatetime,
	"Fecha_cierre":           dataset.TypeDatetime,
	"Fecha_inicio_incidente": dataset.TypeDatetime,
	"Fecha_fin_incidente":    dataset.TypeDatetime,
	importer.IncidentSeqColumn: dataset.TypeInteger,
	// site master
	"Fecha_Fin_Swap": dataset.TypeDatetime,
	"Fecha_TSS":      dataset.TypeDatetime,
}

// consolidatedTypes declares the storage types of the consolidated
// table's non-text columns.
var consolidatedTypes = map[string]dataset.ColumnType{
	"Creacion_TOA":                 dataset.TypeDatetime,
	"Cierre_TOA":                   dataset.TypeDatetime,
	"SLA_Inicio":                   dataset.TypeDatetime,
	"SLA_Fin":                      dataset.TypeDatetime,
	"Fecha_Fin_Swap":               dataset.TypeDatetime,
	"Fecha_TSS":                    dataset.TypeDatetime,
	"Hora_PR_1":                    dataset.TypeDatetime,
	"Hora_PR_2":                    dataset.TypeDatetime,
	"Hora_PR_3":                    dataset.TypeDatetime,
	"Hora_Creacion_Abastecimiento": dataset.TypeDatetime,
	"Dias_Swap":                    dataset.TypeInteger,
	"Dias_TSS":                     dataset.TypeInteger,
	"Dias_Abastecimiento":          dataset.TypeInteger,
	"Rechazos":                     dataset.TypeInteger,
	"Tiempo_TOA_Autin":             dataset.TypeReal,
	"Duracion_Horas":               dataset.TypeReal,
}
