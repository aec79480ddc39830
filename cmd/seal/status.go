package main

import (
	"github.com/spf13/cobra"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workspace and snapshot status",
	Long: `Report what seal can see in this repository: the configured snapshot,
its size if it loads, the run journal and whether the rewrite validator
is available in this build.`,
	RunE: runStatus,
}

// StatusFacts is the facts payload for the status command.
type StatusFacts struct {
	Root           string `json:"root"`
	SnapshotPath   string `json:"snapshotPath"`
	SnapshotFormat string `json:"snapshotFormat"`
	SnapshotID     string `json:"snapshotId,omitempty"`
	SnapshotError  string `json:"snapshotError,omitempty"`
	Projects       int    `json:"projects"`
	Documents      int    `json:"documents"`
	Types          int    `json:"types"`
	Fields         int    `json:"fields"`

	JournalEnabled     bool `json:"journalEnabled"`
	JournalRuns        int  `json:"journalRuns"`
	ValidatorAvailable bool `json:"validatorAvailable"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	root := mustGetRepoRoot()
	logger := newLogger()
	eng := mustGetEngine(root, logger)

	result, err := eng.Status(newContext())
	if err != nil {
		return err
	}

	facts := &StatusFacts{
		Root:               result.Root,
		SnapshotPath:       result.SnapshotPath,
		SnapshotFormat:     result.SnapshotFormat,
		SnapshotID:         result.SnapshotID,
		SnapshotError:      result.SnapshotError,
		Projects:           result.Projects,
		Documents:          result.Documents,
		Types:              result.Types,
		Fields:             result.Fields,
		JournalEnabled:     result.JournalEnabled,
		JournalRuns:        result.JournalRuns,
		ValidatorAvailable: result.ValidatorAvailable,
	}
	return emit(newResponse(facts, nil), statusFormat)
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(statusCmd)
}
