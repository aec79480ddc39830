package main

import (
	"github.com/spf13/cobra"

	"seal/internal/engine"
)

var (
	promoteWrite  bool
	promoteFormat string
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Rewrite promotable field declarations with the immutability qualifier",
	Long: `Compute promotion verdicts, then rewrite every declaration site of each
promotable field to carry the language's immutability qualifier
(readonly for C#, final for Java).

All declaration sites of a field change together. A declaration that
lists several variables is only rewritten when every variable in it
qualifies. Without --write the rewritten text is reported but no file
is modified.`,
	RunE: runPromote,
}

// DocumentFacts describes one rewritten document in the promote output.
type DocumentFacts struct {
	Path    string   `json:"path"`
	Project string   `json:"project,omitempty"`
	Groups  []string `json:"groups"`
	Written bool     `json:"written"`
	Text    string   `json:"text,omitempty"`
}

// PromoteFacts is the facts payload for the promote command.
type PromoteFacts struct {
	SnapshotID string          `json:"snapshotId"`
	Promoted   []string        `json:"promoted"`
	Excluded   []string        `json:"excluded,omitempty"`
	Documents  []DocumentFacts `json:"documents"`
	Validated  bool            `json:"validated"`
	Applied    bool            `json:"applied"`
}

func runPromote(cmd *cobra.Command, args []string) error {
	root := mustGetRepoRoot()
	logger := newLogger()
	eng := mustGetEngine(root, logger)

	result, err := eng.PromoteFields(newContext(), engine.PromoteOptions{Write: promoteWrite})
	if err != nil {
		return err
	}

	docs := make([]DocumentFacts, 0, len(result.Documents))
	for _, doc := range result.Documents {
		df := DocumentFacts{
			Path:    doc.Path,
			Project: doc.Project,
			Groups:  doc.Groups,
			Written: doc.Written,
		}
		if !promoteWrite {
			df.Text = doc.Text
		}
		docs = append(docs, df)
	}

	facts := &PromoteFacts{
		SnapshotID: result.SnapshotID,
		Promoted:   result.Promoted,
		Excluded:   result.Excluded,
		Documents:  docs,
		Validated:  result.Validated,
		Applied:    promoteWrite,
	}
	prov := &Provenance{
		SnapshotID: result.SnapshotID,
		DurationMS: result.Duration.Milliseconds(),
		Warnings:   result.Warnings,
	}
	return emit(newResponse(facts, prov), promoteFormat)
}

func init() {
	promoteCmd.Flags().BoolVarP(&promoteWrite, "write", "w", false, "Apply the rewrites to files under the source root")
	promoteCmd.Flags().StringVar(&promoteFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(promoteCmd)
}
