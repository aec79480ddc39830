package engine

import (
	"context"
	"os"
	"time"

	"seal/internal/errors"
	"seal/internal/model"
	"seal/internal/paths"
	"seal/internal/rewrite"
	"seal/internal/storage"
	"seal/internal/verdict"
)

// PromoteOptions controls a promotion run.
type PromoteOptions struct {
	// Write applies the rewrites to files under the source root. When false
	// the run is a dry run and only the result carries the rewritten text.
	Write bool
}

// ChangedDocument is one rewritten document.
type ChangedDocument struct {
	Path    string
	Project string
	Groups  []string
	Text    string
	Written bool
}

// PromoteResult is the outcome of a promotion run.
type PromoteResult struct {
	SnapshotID string
	Verdicts   *verdict.Verdicts
	Excluded   []string
	Promoted   []string
	Documents  []ChangedDocument
	Validated  bool
	Duration   time.Duration
	Warnings   []string
}

// VerdictsResult is the outcome of an analysis-only run.
type VerdictsResult struct {
	SnapshotID string
	Verdicts   *verdict.Verdicts
	Excluded   []string
	Promotable []string
	Duration   time.Duration
}

// Verdicts computes promotion verdicts without touching any source.
func (e *Engine) Verdicts(ctx context.Context) (*VerdictsResult, error) {
	started := time.Now()
	prog, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	v, err := e.computer.Verdicts(ctx, prog)
	if err != nil {
		err = wrapCancel(ctx, err)
		e.record(&storage.Run{
			SnapshotID: prog.SnapshotID,
			Operation:  storage.OpVerdicts,
			Outcome:    outcomeFor(err),
			StartedAt:  started,
			Duration:   time.Since(started),
			ErrorCode:  errorCodePtr(err),
		})
		return nil, err
	}

	promotableSet, excluded := e.applyPolicy(prog, v)
	promotable := make([]string, 0, len(promotableSet))
	for _, id := range v.Promotable {
		if promotableSet[id] {
			promotable = append(promotable, id)
		}
	}

	result := &VerdictsResult{
		SnapshotID: prog.SnapshotID,
		Verdicts:   v,
		Excluded:   excluded,
		Promotable: promotable,
		Duration:   time.Since(started),
	}
	e.record(&storage.Run{
		SnapshotID: prog.SnapshotID,
		Operation:  storage.OpVerdicts,
		Outcome:    storage.OutcomeOK,
		StartedAt:  started,
		Duration:   result.Duration,
		Candidates: len(v.Candidates),
		Written:    len(v.Written),
		Promoted:   len(promotable),
		Verdicts:   v,
	})
	return result, nil
}

// PromoteFields computes verdicts and rewrites every affected declaration.
// All documents are rewritten and validated before anything is written, so
// a validation failure leaves the source tree untouched.
func (e *Engine) PromoteFields(ctx context.Context, opts PromoteOptions) (*PromoteResult, error) {
	started := time.Now()
	prog, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	fail := func(err error) (*PromoteResult, error) {
		e.record(&storage.Run{
			SnapshotID: prog.SnapshotID,
			Operation:  storage.OpPromote,
			Outcome:    outcomeFor(err),
			StartedAt:  started,
			Duration:   time.Since(started),
			ErrorCode:  errorCodePtr(err),
		})
		return nil, err
	}

	v, err := e.computer.Verdicts(ctx, prog)
	if err != nil {
		return fail(wrapCancel(ctx, err))
	}

	promotableSet, excluded := e.applyPolicy(prog, v)
	plan := rewrite.NewPlan(prog, promotableSet)

	result := &PromoteResult{
		SnapshotID: prog.SnapshotID,
		Verdicts:   v,
		Excluded:   excluded,
		Promoted:   plan.Fields,
	}

	// Rewrite phase: build every changed document in memory first.
	var changedDocs []*model.Document
	for _, ref := range prog.DocumentRefs() {
		if err := ctx.Err(); err != nil {
			return fail(wrapCancel(ctx, err))
		}
		if !plan.Touches(ref.Document) {
			continue
		}
		text, err := e.documentText(ref.Document)
		if err != nil {
			return fail(err)
		}
		rewritten, groups, err := rewrite.PromoteDocument(ref.Document, text, plan)
		if err != nil {
			return fail(err)
		}
		if len(groups) == 0 {
			continue
		}
		result.Documents = append(result.Documents, ChangedDocument{
			Path:    ref.Document.Path,
			Project: ref.Project.AssemblyName,
			Groups:  groups,
			Text:    rewritten,
		})
		changedDocs = append(changedDocs, ref.Document)
	}

	// Validation phase: every rewritten document must still parse.
	if e.cfg.Rewrite.Validate && e.validator.Available() {
		for i, cd := range result.Documents {
			if err := e.validator.Validate(ctx, cd.Path, changedDocs[i].Language, cd.Text); err != nil {
				return fail(err)
			}
		}
		result.Validated = true
	}

	// Write phase.
	if opts.Write {
		for i := range result.Documents {
			cd := &result.Documents[i]
			if changedDocs[i].HasInlineText() {
				result.Warnings = append(result.Warnings,
					"document "+cd.Path+" carries snapshot-embedded text and was not written")
				continue
			}
			path := paths.JoinRootPath(e.sourceRoot(), cd.Path)
			if err := os.WriteFile(path, []byte(cd.Text), 0644); err != nil {
				return fail(errors.New(errors.SourceMissing, "cannot write source file "+cd.Path, err))
			}
			cd.Written = true
		}
	}

	result.Duration = time.Since(started)
	e.logger.Info("promotion complete",
		"snapshot", prog.SnapshotID,
		"promoted_fields", len(plan.Fields),
		"changed_documents", len(result.Documents),
		"written", opts.Write,
		"duration", result.Duration)

	e.record(&storage.Run{
		SnapshotID:       prog.SnapshotID,
		Operation:        storage.OpPromote,
		Outcome:          storage.OutcomeOK,
		StartedAt:        started,
		Duration:         result.Duration,
		Candidates:       len(v.Candidates),
		Written:          len(v.Written),
		Promoted:         len(plan.Fields),
		DocumentsChanged: len(result.Documents),
		Verdicts:         v,
	})
	return result, nil
}
