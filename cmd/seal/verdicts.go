package main

import (
	"github.com/spf13/cobra"
)

var verdictsFormat string

var verdictsCmd = &cobra.Command{
	Use:   "verdicts",
	Short: "Compute promotion verdicts without touching any source",
	Long: `Analyze the program snapshot and report, per candidate field, whether it
is only ever assigned inside its declaring type's own constructors.

Nothing is rewritten. The same verdicts drive 'seal promote'; running
verdicts first is a safe preview of what promote would change.`,
	RunE: runVerdicts,
}

// VerdictFacts is the facts payload for the verdicts command.
type VerdictFacts struct {
	SnapshotID string   `json:"snapshotId"`
	Candidates []string `json:"candidates"`
	Written    []string `json:"written"`
	Promotable []string `json:"promotable"`
	Excluded   []string `json:"excluded,omitempty"`
}

func runVerdicts(cmd *cobra.Command, args []string) error {
	root := mustGetRepoRoot()
	logger := newLogger()
	eng := mustGetEngine(root, logger)

	result, err := eng.Verdicts(newContext())
	if err != nil {
		return err
	}

	facts := &VerdictFacts{
		SnapshotID: result.SnapshotID,
		Candidates: result.Verdicts.Candidates,
		Written:    result.Verdicts.Written,
		Promotable: result.Promotable,
		Excluded:   result.Excluded,
	}
	prov := &Provenance{
		SnapshotID: result.SnapshotID,
		DurationMS: result.Duration.Milliseconds(),
	}
	return emit(newResponse(facts, prov), verdictsFormat)
}

func init() {
	verdictsCmd.Flags().StringVar(&verdictsFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(verdictsCmd)
}
