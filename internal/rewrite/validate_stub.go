//go:build !cgo

package rewrite

import (
	"context"

	"seal/internal/model"
)

// Validator reparses rewritten text to catch surgery gone wrong. This stub
// is used when CGO is not available; validation is skipped.
type Validator struct{}

// NewValidator returns the no-op validator for non-cgo builds.
func NewValidator() *Validator {
	return &Validator{}
}

// Available reports whether reparse validation is compiled in.
func (v *Validator) Available() bool {
	return false
}

// Validate is a no-op without cgo.
func (v *Validator) Validate(ctx context.Context, path string, lang model.Language, text string) error {
	return nil
}
