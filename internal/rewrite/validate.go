//go:build cgo

package rewrite

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/java"

	"seal/internal/errors"
	"seal/internal/model"
)

// Validator reparses rewritten text to catch surgery gone wrong before it
// reaches disk. Only available in cgo builds; callers check Available.
type Validator struct {
	parser *sitter.Parser
}

// NewValidator creates a tree-sitter backed validator.
func NewValidator() *Validator {
	return &Validator{parser: sitter.NewParser()}
}

// Available reports whether reparse validation is compiled in.
func (v *Validator) Available() bool {
	return v != nil
}

// Validate parses text and fails when the parse tree contains syntax
// errors. Languages without a grammar pass unvalidated.
func (v *Validator) Validate(ctx context.Context, path string, lang model.Language, text string) error {
	tsLang := grammarFor(lang)
	if tsLang == nil {
		return nil
	}

	v.parser.SetLanguage(tsLang)
	tree, err := v.parser.ParseCtx(ctx, nil, []byte(text))
	if err != nil {
		return errors.New(
			errors.ValidationFailed,
			fmt.Sprintf("failed to reparse rewritten %s", path),
			err,
		)
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		return errors.New(
			errors.ValidationFailed,
			fmt.Sprintf("rewritten %s no longer parses", path),
			nil,
		)
	}
	return nil
}

func grammarFor(lang model.Language) *sitter.Language {
	switch lang {
	case model.LangCSharp:
		return csharp.GetLanguage()
	case model.LangJava:
		return java.GetLanguage()
	}
	return nil
}
