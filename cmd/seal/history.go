package main

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded analysis and rewrite runs",
	Long: `List the run journal, newest first. Every verdicts, promote and tidy
run is recorded with its outcome, counters and duration.`,
	RunE: runHistory,
}

// RunFacts is one journal entry in the history output.
type RunFacts struct {
	ID               string `json:"id"`
	SnapshotID       string `json:"snapshotId"`
	Operation        string `json:"operation"`
	Outcome          string `json:"outcome"`
	StartedAt        string `json:"startedAt"`
	DurationMS       int64  `json:"durationMs"`
	Candidates       int    `json:"candidates"`
	Written          int    `json:"written"`
	Promoted         int    `json:"promoted"`
	DocumentsChanged int    `json:"documentsChanged"`
	ErrorCode        string `json:"errorCode,omitempty"`
}

// HistoryFacts is the facts payload for the history command.
type HistoryFacts struct {
	Runs []RunFacts `json:"runs"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	root := mustGetRepoRoot()
	logger := newLogger()
	eng := mustGetEngine(root, logger)

	runs, err := eng.History(newContext(), historyLimit)
	if err != nil {
		return err
	}

	facts := &HistoryFacts{Runs: make([]RunFacts, 0, len(runs))}
	for _, run := range runs {
		rf := RunFacts{
			ID:               run.ID,
			SnapshotID:       run.SnapshotID,
			Operation:        run.Operation,
			Outcome:          run.Outcome,
			StartedAt:        run.StartedAt.UTC().Format(time.RFC3339),
			DurationMS:       run.Duration.Milliseconds(),
			Candidates:       run.Candidates,
			Written:          run.Written,
			Promoted:         run.Promoted,
			DocumentsChanged: run.DocumentsChanged,
		}
		if run.ErrorCode != nil {
			rf.ErrorCode = *run.ErrorCode
		}
		facts.Runs = append(facts.Runs, rf)
	}
	return emit(newResponse(facts, nil), historyFormat)
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(historyCmd)
}
