// Package scan gathers the raw material for promotion verdicts: the fields
// eligible in principle, and the write sites that disqualify them. Both
// gathers only read the program model and accumulate into concurrency-safe
// sets, so document scans run in parallel without coordination.
package scan

import (
	"context"
	"log/slog"

	"seal/internal/fieldset"
	"seal/internal/model"
	"seal/internal/visibility"
)

// Candidates returns every field that could be promoted if no disqualifying
// write exists. Exclusions apply in order: already immutable, constant,
// externally implemented, then reachable from outside the program.
func Candidates(ctx context.Context, prog *model.Program, res *visibility.Resolver, logger *slog.Logger) (*fieldset.Set, error) {
	set := fieldset.New()
	var skippedReadonly, skippedConst, skippedExtern, skippedVisible int

	for _, f := range prog.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch {
		case f.ReadOnly:
			skippedReadonly++
		case f.Const:
			skippedConst++
		case f.Extern:
			skippedExtern++
		case res.FieldReachable(f):
			skippedVisible++
		default:
			set.Insert(f.ID)
		}
	}

	logger.Debug("candidate scan complete",
		"eligible", set.Len(),
		"readonly", skippedReadonly,
		"const", skippedConst,
		"extern", skippedExtern,
		"visible", skippedVisible,
	)
	return set, nil
}
