package engine

import (
	"context"

	"seal/internal/errors"
	"seal/internal/storage"
)

// History returns recorded runs, newest first. A limit of zero or less
// returns everything.
func (e *Engine) History(ctx context.Context, limit int) ([]*storage.Run, error) {
	if e.runs == nil {
		return nil, errors.New(errors.StorageError, "run journal is disabled or unavailable", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, wrapCancel(ctx, err)
	}
	return e.runs.List(limit)
}

// StatusResult summarizes the workspace for "seal status".
type StatusResult struct {
	Root           string
	SnapshotPath   string
	SnapshotFormat string

	// Snapshot facts, populated when the snapshot loads. SnapshotError
	// carries the load failure otherwise.
	SnapshotID    string
	SnapshotError string
	Projects      int
	Documents     int
	Types         int
	Fields        int

	JournalEnabled     bool
	JournalRuns        int
	ValidatorAvailable bool
}

// Status reports what the engine can see without changing anything. A
// snapshot that fails to load is reported, not fatal.
func (e *Engine) Status(ctx context.Context) (*StatusResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapCancel(ctx, err)
	}

	result := &StatusResult{
		Root:               e.root,
		SnapshotPath:       e.cfg.Snapshot.Path,
		SnapshotFormat:     e.cfg.Snapshot.Format,
		JournalEnabled:     e.runs != nil,
		ValidatorAvailable: e.validator.Available(),
	}

	if prog, err := e.Snapshot(); err != nil {
		result.SnapshotError = err.Error()
	} else {
		result.SnapshotID = prog.SnapshotID
		result.Projects = len(prog.Projects)
		result.Documents = prog.DocumentCount()
		result.Types = len(prog.Types)
		result.Fields = len(prog.Fields)
	}

	if e.runs != nil {
		if n, err := e.runs.Count(); err == nil {
			result.JournalRuns = n
		}
	}
	return result, nil
}
