package scan

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"seal/internal/fieldset"
	"seal/internal/model"
)

// Writes returns every field disqualified by a write site anywhere in the
// program. Documents are scanned concurrently; workers <= 0 means one per
// available CPU.
func Writes(ctx context.Context, prog *model.Program, workers int, logger *slog.Logger) (*fieldset.Set, error) {
	set := fieldset.New()
	refs := prog.DocumentRefs()
	if len(refs) == 0 {
		return set, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(workers, len(refs)))
	for _, ref := range refs {
		doc := ref.Document
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			scanDocument(prog, doc, set)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("write scan complete", "documents", len(refs), "written", set.Len())
	return set, nil
}

// scanDocument classifies the document's write sites.
//
// An assignment or a writable by-ref argument disqualifies its target field
// unless it sits lexically inside a constructor of the field's declaring
// type. A call to an opaque callee declaring a writable by-ref parameter of
// a value type disqualifies every field of that type, with no constructor
// exception: nothing can be seen of what the callee mutates.
func scanDocument(prog *model.Program, doc *model.Document, writes *fieldset.Set) {
	for _, a := range doc.Assignments {
		if !a.Target.IsField() {
			continue
		}
		f := prog.FieldByID(a.Target.Symbol)
		if f == nil {
			continue
		}
		if inOwnConstructor(a.Enclosing, f) {
			continue
		}
		writes.Insert(f.ID)
	}

	for _, inv := range doc.Invocations {
		for _, arg := range inv.Args {
			if !arg.Mode.Writable() || !arg.Ref.IsField() {
				continue
			}
			f := prog.FieldByID(arg.Ref.Symbol)
			if f == nil {
				continue
			}
			if inOwnConstructor(inv.Enclosing, f) {
				continue
			}
			writes.Insert(f.ID)
		}

		if inv.Callee.HasBody {
			continue
		}
		for _, p := range inv.Callee.Params {
			if !p.Mode.Writable() {
				continue
			}
			t := prog.TypeByID(p.Type)
			if t == nil || !t.ValueType {
				// By-ref over a reference type passes the reference, not
				// the pointee. Only value types are a hazard here.
				continue
			}
			for _, f := range prog.FieldsOfType(t.ID) {
				writes.Insert(f.ID)
			}
		}
	}
}

// inOwnConstructor reports whether the enclosing member is a constructor of
// the field's own declaring type. Assignment there is initialization, not
// mutation, and the rule is lexical: any instance's field qualifies as long
// as the constructor belongs to the declaring type.
func inOwnConstructor(m model.Member, f *model.Field) bool {
	return m.Constructor && m.DeclaringType == f.DeclaringType
}
