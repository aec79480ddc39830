package main

import (
	"github.com/spf13/cobra"

	"seal/internal/engine"
)

var (
	tidyWrite  bool
	tidyRules  []string
	tidyFormat string
)

var tidyCmd = &cobra.Command{
	Use:   "tidy [document...]",
	Short: "Apply local style rules to snapshot documents",
	Long: `Run single-file cleanup rules over the snapshot's documents: sort and
dedupe import directives (system namespaces first) and put the expected
value first in two-argument assertion calls.

Positional arguments restrict the run to those snapshot paths. Rules
default to the configured list; --rule overrides it. Without --write
the result is reported but no file is modified.`,
	RunE: runTidy,
}

// TidyDocumentFacts describes one tidied document.
type TidyDocumentFacts struct {
	Path    string `json:"path"`
	Project string `json:"project,omitempty"`
	Edits   int    `json:"edits"`
	Written bool   `json:"written"`
	Text    string `json:"text,omitempty"`
}

// TidyFacts is the facts payload for the tidy command.
type TidyFacts struct {
	SnapshotID string              `json:"snapshotId"`
	Documents  []TidyDocumentFacts `json:"documents"`
	Edits      int                 `json:"edits"`
	Applied    bool                `json:"applied"`
}

func runTidy(cmd *cobra.Command, args []string) error {
	root := mustGetRepoRoot()
	logger := newLogger()
	eng := mustGetEngine(root, logger)

	result, err := eng.Tidy(newContext(), engine.TidyOptions{
		Write:     tidyWrite,
		Documents: args,
		Rules:     tidyRules,
	})
	if err != nil {
		return err
	}

	docs := make([]TidyDocumentFacts, 0, len(result.Documents))
	for _, doc := range result.Documents {
		df := TidyDocumentFacts{
			Path:    doc.Path,
			Project: doc.Project,
			Edits:   doc.Edits,
			Written: doc.Written,
		}
		if !tidyWrite {
			df.Text = doc.Text
		}
		docs = append(docs, df)
	}

	facts := &TidyFacts{
		SnapshotID: result.SnapshotID,
		Documents:  docs,
		Edits:      result.EditCount,
		Applied:    tidyWrite,
	}
	prov := &Provenance{
		SnapshotID: result.SnapshotID,
		DurationMS: result.Duration.Milliseconds(),
		Warnings:   result.Warnings,
	}
	return emit(newResponse(facts, prov), tidyFormat)
}

func init() {
	tidyCmd.Flags().BoolVarP(&tidyWrite, "write", "w", false, "Apply the edits to files under the source root")
	tidyCmd.Flags().StringSliceVar(&tidyRules, "rule", nil, "Rule to run (repeatable; overrides the configured list)")
	tidyCmd.Flags().StringVar(&tidyFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(tidyCmd)
}
