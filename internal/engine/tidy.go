package engine

import (
	"context"
	"os"
	"time"

	"seal/internal/errors"
	"seal/internal/model"
	"seal/internal/paths"
	"seal/internal/rules"
	"seal/internal/storage"
)

// TidyOptions controls a tidy run.
type TidyOptions struct {
	// Write applies the edits to files under the source root.
	Write bool
	// Documents restricts the run to these snapshot paths. Empty means all.
	Documents []string
	// Rules overrides the configured rule list when non-empty.
	Rules []string
}

// TidiedDocument is one document changed by the local rules.
type TidiedDocument struct {
	Path    string
	Project string
	Edits   int
	Text    string
	Written bool
}

// TidyResult is the outcome of a tidy run.
type TidyResult struct {
	SnapshotID string
	Documents  []TidiedDocument
	EditCount  int
	Duration   time.Duration
	Warnings   []string
}

// Tidy runs the local single-file rules over the snapshot's documents.
// Promotion verdicts are never consulted or affected.
func (e *Engine) Tidy(ctx context.Context, opts TidyOptions) (*TidyResult, error) {
	started := time.Now()
	prog, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	fail := func(err error) (*TidyResult, error) {
		e.record(&storage.Run{
			SnapshotID: prog.SnapshotID,
			Operation:  storage.OpTidy,
			Outcome:    outcomeFor(err),
			StartedAt:  started,
			Duration:   time.Since(started),
			ErrorCode:  errorCodePtr(err),
		})
		return nil, err
	}

	ruleNames := opts.Rules
	if len(ruleNames) == 0 {
		ruleNames = e.cfg.Tidy.Rules
	}

	selected := make(map[string]bool, len(opts.Documents))
	for _, path := range opts.Documents {
		selected[path] = true
	}
	seen := make(map[string]bool, len(selected))

	result := &TidyResult{SnapshotID: prog.SnapshotID}
	var changedDocs []*model.Document
	for _, ref := range prog.DocumentRefs() {
		if err := ctx.Err(); err != nil {
			return fail(wrapCancel(ctx, err))
		}
		doc := ref.Document
		if len(selected) > 0 {
			if !selected[doc.Path] {
				continue
			}
			seen[doc.Path] = true
		}
		if len(doc.Directives) == 0 && len(doc.Invocations) == 0 {
			continue
		}

		text, err := e.documentText(doc)
		if err != nil {
			return fail(err)
		}
		out, edits, err := rules.Apply(doc, text, ruleNames, e.pol.Tidy.AssertionMethods)
		if err != nil {
			return fail(err)
		}
		if edits == 0 || out == text {
			continue
		}
		if e.cfg.Rewrite.Validate && e.validator.Available() {
			if err := e.validator.Validate(ctx, doc.Path, doc.Language, out); err != nil {
				return fail(err)
			}
		}
		result.Documents = append(result.Documents, TidiedDocument{
			Path:    doc.Path,
			Project: ref.Project.AssemblyName,
			Edits:   edits,
			Text:    out,
		})
		result.EditCount += edits
		changedDocs = append(changedDocs, doc)
	}

	for _, path := range opts.Documents {
		if !seen[path] {
			result.Warnings = append(result.Warnings, "document "+path+" is not in the snapshot")
		}
	}

	if opts.Write {
		for i := range result.Documents {
			td := &result.Documents[i]
			if changedDocs[i].HasInlineText() {
				result.Warnings = append(result.Warnings,
					"document "+td.Path+" carries snapshot-embedded text and was not written")
				continue
			}
			path := paths.JoinRootPath(e.sourceRoot(), td.Path)
			if err := os.WriteFile(path, []byte(td.Text), 0644); err != nil {
				return fail(errors.New(errors.SourceMissing, "cannot write source file "+td.Path, err))
			}
			td.Written = true
		}
	}

	result.Duration = time.Since(started)
	e.logger.Info("tidy complete",
		"snapshot", prog.SnapshotID,
		"changed_documents", len(result.Documents),
		"edits", result.EditCount,
		"written", opts.Write,
		"duration", result.Duration)

	e.record(&storage.Run{
		SnapshotID:       prog.SnapshotID,
		Operation:        storage.OpTidy,
		Outcome:          storage.OutcomeOK,
		StartedAt:        started,
		Duration:         result.Duration,
		DocumentsChanged: len(result.Documents),
	})
	return result, nil
}
