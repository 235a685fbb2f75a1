// Package build orchestrates a run: the state outer loop, the table middle
// loop, and the per-table sequence work delegated to the assembler.
//
// Failure policy: anything wrong with one (state, table) unit is logged and
// counted, never fatal to siblings. Only shared setup (appendix metadata,
// templates, the output sink) can abort a run, and that happens before this
// package is reached.
package build

import (
	"context"
	"log/slog"

	"acsgen/internal/acs/appendix"
	"acsgen/internal/acs/archive"
	"acsgen/internal/acs/assemble"
	"acsgen/internal/acs/geo"
	"acsgen/internal/acs/template"
	"acsgen/internal/config"
	"acsgen/internal/logging"
	"acsgen/internal/report"
	"acsgen/internal/sink"
)

// Runner drives one full run over the configured states and tables.
type Runner struct {
	cfg       *config.Config
	appendix  *appendix.Index
	templates *template.Store
	out       sink.Sink
	rep       *report.Report
	log       *slog.Logger

	// openState is swappable so tests can serve archives from memory.
	openState func(state string) (*archive.Archive, error)
}

// New wires a Runner over shared read-only inputs.
func New(cfg *config.Config, appx *appendix.Index, templates *template.Store,
	out sink.Sink, rep *report.Report, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:       cfg,
		appendix:  appx,
		templates: templates,
		out:       out,
		rep:       rep,
		log:       logger,
		openState: func(state string) (*archive.Archive, error) {
			return archive.OpenFile(state, cfg.StateArchivePath(state))
		},
	}
}

// Run writes the table index, then builds every requested table for every
// configured state. The returned error is reserved for shared-output
// failures; per-state and per-table problems end up in the report.
func (r *Runner) Run(ctx context.Context) error {
	entries := indexEntries(r.appendix)
	if err := r.out.WriteIndex(ctx, entries); err != nil {
		return err
	}

	tables := r.cfg.Tables
	if len(tables) == 0 {
		tables = r.appendix.TableNames()
	}

	for _, state := range r.cfg.States {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.runState(ctx, state, tables)
	}
	return nil
}

// runState builds all tables for one state. Every early return below is a
// state-level skip: the state lands in the report with zero built tables.
func (r *Runner) runState(ctx context.Context, state string, tables []string) {
	log := logging.WithFields(r.log, "state", state)

	arch, err := r.openState(state)
	if err != nil {
		log.Error("state archive unavailable", "error", err)
		r.rep.StateSkipped(state)
		return
	}
	defer arch.Close()

	geoIdx, err := r.loadGeography(arch)
	if err != nil {
		log.Error("geography file unusable", "error", err)
		r.rep.StateSkipped(state)
		return
	}

	log.Info("building tables", "units", geoIdx.Len(), "tables", len(tables))
	asm := assemble.New(r.appendix, r.templates, geoIdx)

	for _, name := range tables {
		if ctx.Err() != nil {
			return
		}
		tbl, err := asm.Assemble(name, arch)
		if err != nil {
			log.Warn("table skipped", "table", name, "error", err)
			r.rep.Skipped(state)
			continue
		}
		if tbl == nil {
			r.rep.Empty(state)
			continue
		}
		if err := r.out.WriteTable(ctx, state, tbl); err != nil {
			log.Error("table write failed", "table", name, "error", err)
			r.rep.Skipped(state)
			continue
		}
		r.rep.Built(state)
	}

	log.Info(r.rep.Result(state).Summary())
}

// loadGeography parses the state's geography file into the per-state index.
func (r *Runner) loadGeography(arch *archive.Archive) (*geo.Index, error) {
	rc, err := arch.Geography()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return geo.Parse(rc, r.templates.GeoTemplate(), r.cfg.SummaryLevel)
}

func indexEntries(appx *appendix.Index) []sink.IndexEntry {
	tables := appx.Tables()
	entries := make([]sink.IndexEntry, len(tables))
	for i, t := range tables {
		entries[i] = sink.IndexEntry{Name: t.Name, Title: t.Title}
	}
	return entries
}
