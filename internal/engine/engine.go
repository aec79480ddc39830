// Package engine coordinates snapshot loading, verdict computation,
// declaration rewriting, tidy rules, and the run journal. It is the single
// integration point the CLI talks to.
package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"seal/internal/config"
	"seal/internal/errors"
	"seal/internal/model"
	"seal/internal/paths"
	"seal/internal/policy"
	"seal/internal/rewrite"
	"seal/internal/snapshot"
	"seal/internal/storage"
	"seal/internal/verdict"
)

// Engine wires the analysis pipeline together for one repository root.
type Engine struct {
	root      string
	cfg       *config.Config
	pol       *policy.Policy
	logger    *slog.Logger
	computer  *verdict.Computer
	validator *rewrite.Validator

	// db and runs are nil when the journal is disabled or unavailable.
	db   *storage.DB
	runs *storage.RunRepository

	snapMu   sync.Mutex
	snapshot *model.Program
}

// New creates an engine for the repository at root. A journal that cannot
// be opened is logged and skipped rather than failing the whole engine.
func New(root string, cfg *config.Config, pol *policy.Policy, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}
	if pol == nil {
		pol = policy.Default()
	}

	computer, err := verdict.NewComputer(cfg.Analysis.Workers, cfg.Analysis.CacheSize, logger)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		root:      root,
		cfg:       cfg,
		pol:       pol,
		logger:    logger,
		computer:  computer,
		validator: rewrite.NewValidator(),
	}

	if cfg.Journal.Enabled {
		db, err := storage.Open(root, logger)
		if err != nil {
			logger.Warn("run journal unavailable", "error", err.Error())
		} else {
			e.db = db
			e.runs = storage.NewRunRepository(db)
		}
	}

	return e, nil
}

// Close releases the journal database.
func (e *Engine) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// Snapshot loads and caches the configured program snapshot. Load failures
// are not cached so a fixed snapshot can be picked up without restarting.
func (e *Engine) Snapshot() (*model.Program, error) {
	e.snapMu.Lock()
	defer e.snapMu.Unlock()
	if e.snapshot != nil {
		return e.snapshot, nil
	}

	prog, err := snapshot.Load(
		e.resolvePath(e.cfg.Snapshot.Path),
		e.resolvePath(e.cfg.Snapshot.ManifestPath),
		e.cfg.Snapshot.Format,
	)
	if err != nil {
		return nil, err
	}
	e.snapshot = prog
	return prog, nil
}

// resolvePath anchors a config-relative path at the repository root.
func (e *Engine) resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.root, path)
}

// sourceRoot is the directory document paths are resolved against.
func (e *Engine) sourceRoot() string {
	return e.resolvePath(e.cfg.SourceRoot)
}

// documentText returns a document's content, reading it from the source
// root when the snapshot did not embed it.
func (e *Engine) documentText(doc *model.Document) (string, error) {
	if doc.HasInlineText() {
		return doc.Text, nil
	}
	path := paths.JoinRootPath(e.sourceRoot(), doc.Path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.SourceMissing,
				fmt.Sprintf("source file %s not found under %s", doc.Path, e.sourceRoot()), err)
		}
		return "", errors.New(errors.SourceMissing, "cannot read source file "+doc.Path, err)
	}
	return string(data), nil
}

// applyPolicy removes policy-excluded fields from the promotable set.
// Exclusions only ever shrink the set.
func (e *Engine) applyPolicy(prog *model.Program, v *verdict.Verdicts) (map[string]bool, []string) {
	promotable := v.PromotableSet()
	var excluded []string
	for _, id := range v.Promotable {
		f := prog.FieldByID(id)
		if f == nil {
			continue
		}
		typeName := ""
		if t := prog.TypeByID(f.DeclaringType); t != nil {
			typeName = t.Name
		}
		if e.pol.ExcludesField(typeName, f.Name, fieldDocPath(prog, f)) {
			delete(promotable, id)
			excluded = append(excluded, id)
		}
	}
	return promotable, excluded
}

// fieldDocPath is the path of the document holding the field's first
// declaration site, or empty for fields without sites.
func fieldDocPath(prog *model.Program, f *model.Field) string {
	for _, gid := range f.Groups {
		if site, ok := prog.GroupByID(gid); ok {
			return site.Document.Path
		}
	}
	return ""
}

// record journals a finished run. Journal trouble degrades to a warning.
func (e *Engine) record(run *storage.Run) {
	if e.runs == nil {
		return
	}
	if run.ID == "" {
		run.ID = storage.NewRunID()
	}
	if err := e.runs.Record(run); err != nil {
		e.logger.Warn("failed to record run", "operation", run.Operation, "error", err.Error())
	}
}

// outcomeFor classifies an operation error for the journal.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return storage.OutcomeOK
	case errors.CodeOf(err) == errors.AnalysisCancelled:
		return storage.OutcomeCancelled
	default:
		return storage.OutcomeError
	}
}

// errorCodePtr extracts the stable code for the journal's error_code column.
func errorCodePtr(err error) *string {
	if err == nil {
		return nil
	}
	code := string(errors.CodeOf(err))
	return &code
}

// wrapCancel maps context termination onto the coded analysis errors so
// callers can distinguish a cancelled run from a broken one.
func wrapCancel(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.New(errors.Timeout, "analysis timed out", err)
	}
	if stderrors.Is(err, context.Canceled) || ctx.Err() != nil {
		return errors.New(errors.AnalysisCancelled, "analysis cancelled before completion", err)
	}
	return err
}
