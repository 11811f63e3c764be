// Package pipeline wires the ingestion, reconciliation, and aggregation
// stages into one run over a workspace.
package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"cmhealth/internal/activity"
	"cmhealth/internal/agentstatus"
	"cmhealth/internal/ingest"
	"cmhealth/internal/logger"
	"cmhealth/internal/registry"
	"cmhealth/internal/schema"
	"cmhealth/internal/summary"
	"cmhealth/pkg/models"
)

// Options configure a pipeline run.
type Options struct {
	StatusVocab agentstatus.Vocabulary
	Activity    activity.Config
	Workers     int
}

// Result is the outcome of one run. The HealthSummary itself is
// deterministic for unchanged inputs; RunID and GeneratedAt identify the
// run, not the data.
type Result struct {
	RunID       string
	GeneratedAt time.Time
	Summary     *models.HealthSummary
	Registry    *registry.Registry
	Warnings    []models.Warning

	TablesRead     int
	TablesRejected int
}

// recorder collects warnings and table counters from concurrent stages.
type recorder struct {
	mu             sync.Mutex
	warnings       []models.Warning
	tablesRead     int
	tablesRejected int
}

func (r *recorder) add(ws ...models.Warning) {
	if len(ws) == 0 {
		return
	}
	r.mu.Lock()
	r.warnings = append(r.warnings, ws...)
	r.mu.Unlock()
}

func (r *recorder) countTable(accepted bool) {
	r.mu.Lock()
	if accepted {
		r.tablesRead++
	} else {
		r.tablesRejected++
	}
	r.mu.Unlock()
}

// all returns the collected warnings in a stable order, independent of
// collector completion order.
func (r *recorder) all() []models.Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Warning, len(r.warnings))
	copy(out, r.warnings)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Message < b.Message
	})
	return out
}

// Run executes the full pipeline: discover and validate tables, build the
// node registry, aggregate agent status and per-collector activity, and
// assemble the health summary. Per-table and per-row problems become
// warnings; only structural failures abort the run.
func Run(ws *ingest.Workspace, opts Options) (*Result, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	res := &Result{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}
	rec := &recorder{}

	inventoryPaths, err := ws.InventoryFiles()
	if err != nil {
		return nil, err
	}
	inventory := loadTables(ws, inventoryPaths, models.KindInventory, rec)
	if len(inventory) == 0 {
		logger.Warnf("No readable inventory tables found; node registry will be empty")
	}
	reg, warns := registry.Build(inventory)
	rec.add(warns...)
	logger.Infof("Node registry built: nodes=%d collectors=%d", reg.Len(), len(reg.Collectors()))

	statusPaths, err := ws.AgentStatusFiles()
	if err != nil {
		return nil, err
	}
	statusTables := loadTables(ws, statusPaths, models.KindAgentStatus, rec)
	agents, warns := agentstatus.Aggregate(statusTables, opts.StatusVocab)
	rec.add(warns...)
	logger.Infof("Agent status aggregated: total=%d active=%d inactive=%d", agents.Total, agents.Active, agents.Inactive)

	// Each collector's aggregation is independent and side-effect-free, so
	// the fan-out needs no locking beyond the shared result sink. Ordering
	// is reconciled at merge time, not by completion order.
	var (
		failMu   sync.Mutex
		failures []models.FailureEvent
	)
	p := pool.New().WithMaxGoroutines(opts.Workers)
	for _, collector := range reg.Collectors() {
		p.Go(func() {
			paths, err := ws.ActivityFiles(collector.DisplayName)
			if err != nil {
				rec.add(models.Warning{
					Kind:    models.WarnSchema,
					Source:  collector.DisplayName,
					Message: fmt.Sprintf("activity folder unreadable: %v", err),
				})
				return
			}
			tables := loadTables(ws, paths, models.KindActivityLog, rec)
			events, warns := activity.AggregateCollector(collector.DisplayName, tables, opts.Activity)
			rec.add(warns...)

			failMu.Lock()
			failures = append(failures, events...)
			failMu.Unlock()
		})
	}
	p.Wait()

	s, err := summary.Build(reg, agents, failures)
	if err != nil {
		return nil, err
	}

	res.Summary = s
	res.Registry = reg
	res.Warnings = rec.all()
	res.TablesRead = rec.tablesRead
	res.TablesRejected = rec.tablesRejected
	logger.Infof("Run complete: tables=%d rejected=%d failures=%d warnings=%d",
		res.TablesRead, res.TablesRejected, len(s.Failures), len(res.Warnings))
	return res, nil
}

// loadTables reads and validates tables of one kind. Unreadable files and
// schema violations exclude only the offending table.
func loadTables(ws *ingest.Workspace, paths []string, kind string, rec *recorder) []*models.Table {
	var out []*models.Table
	for _, path := range paths {
		tbl, err := ingest.ReadTable(ws.FS(), path, kind)
		if err != nil {
			rec.add(models.Warning{
				Kind:    models.WarnParse,
				Source:  path,
				Message: fmt.Sprintf("table unreadable, excluded: %v", err),
			})
			rec.countTable(false)
			continue
		}

		if _, err := schema.Validate(tbl); err != nil {
			var schemaErr *schema.Error
			msg := err.Error()
			if errors.As(err, &schemaErr) {
				msg = fmt.Sprintf("missing required columns %v, table excluded", schemaErr.Missing)
			}
			rec.add(models.Warning{Kind: models.WarnSchema, Source: path, Message: msg})
			logger.Warnf("Schema validation failed for %s: %v", path, err)
			rec.countTable(false)
			continue
		}

		rec.countTable(true)
		out = append(out, tbl)
	}
	return out
}
