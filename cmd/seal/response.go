package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"seal/internal/version"
)

// ResponseSchemaVersion identifies the envelope layout for downstream tools.
const ResponseSchemaVersion = 1

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// Response is the envelope every analysis command emits.
type Response struct {
	SealVersion   string      `json:"sealVersion"`
	SchemaVersion int         `json:"schemaVersion"`
	Facts         any         `json:"facts"`
	Provenance    *Provenance `json:"provenance,omitempty"`
}

// Provenance records where the facts came from and what to double-check.
type Provenance struct {
	SnapshotID string   `json:"snapshotId,omitempty"`
	DurationMS int64    `json:"durationMs"`
	Warnings   []string `json:"warnings,omitempty"`
}

func newResponse(facts any, prov *Provenance) *Response {
	return &Response{
		SealVersion:   version.Version,
		SchemaVersion: ResponseSchemaVersion,
		Facts:         facts,
		Provenance:    prov,
	}
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp *Response, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s (use json or human)", format)
	}
}

func formatJSON(resp any) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp *Response) (string, error) {
	var b strings.Builder

	switch facts := resp.Facts.(type) {
	case *VerdictFacts:
		formatVerdictsHuman(&b, facts)
	case *PromoteFacts:
		formatPromoteHuman(&b, facts)
	case *TidyFacts:
		formatTidyHuman(&b, facts)
	case *PackFacts:
		formatPackHuman(&b, facts)
	case *HistoryFacts:
		formatHistoryHuman(&b, facts)
	case *StatusFacts:
		formatStatusHuman(&b, facts)
	default:
		return formatJSON(resp)
	}

	if resp.Provenance != nil {
		b.WriteString("\n")
		if resp.Provenance.SnapshotID != "" {
			fmt.Fprintf(&b, "snapshot %s, ", shortID(resp.Provenance.SnapshotID))
		}
		fmt.Fprintf(&b, "%dms\n", resp.Provenance.DurationMS)
		for _, w := range resp.Provenance.Warnings {
			fmt.Fprintf(&b, "warning: %s\n", w)
		}
	}
	return b.String(), nil
}

func formatVerdictsHuman(b *strings.Builder, f *VerdictFacts) {
	fmt.Fprintf(b, "candidates: %d\n", len(f.Candidates))
	fmt.Fprintf(b, "written outside constructors: %d\n", len(f.Written))
	fmt.Fprintf(b, "excluded by policy: %d\n", len(f.Excluded))
	fmt.Fprintf(b, "promotable: %d\n", len(f.Promotable))
	for _, id := range f.Promotable {
		fmt.Fprintf(b, "  %s\n", id)
	}
}

func formatPromoteHuman(b *strings.Builder, f *PromoteFacts) {
	verb := "would promote"
	if f.Applied {
		verb = "promoted"
	}
	fmt.Fprintf(b, "%s %d field(s) across %d document(s)\n", verb, len(f.Promoted), len(f.Documents))
	for _, doc := range f.Documents {
		state := "planned"
		if doc.Written {
			state = "written"
		}
		fmt.Fprintf(b, "  %s: %d group(s) [%s]\n", doc.Path, len(doc.Groups), state)
	}
	if len(f.Excluded) > 0 {
		fmt.Fprintf(b, "excluded by policy: %s\n", strings.Join(f.Excluded, ", "))
	}
	if f.Validated {
		b.WriteString("rewritten documents re-parsed cleanly\n")
	}
}

func formatTidyHuman(b *strings.Builder, f *TidyFacts) {
	if len(f.Documents) == 0 {
		b.WriteString("nothing to tidy\n")
		return
	}
	verb := "would apply"
	if f.Applied {
		verb = "applied"
	}
	fmt.Fprintf(b, "%s %d edit(s) across %d document(s)\n", verb, f.Edits, len(f.Documents))
	for _, doc := range f.Documents {
		fmt.Fprintf(b, "  %s: %d edit(s)\n", doc.Path, doc.Edits)
	}
}

func formatPackHuman(b *strings.Builder, f *PackFacts) {
	fmt.Fprintf(b, "packed %s (%s, %d bytes) into %s (%s, %d bytes)\n",
		f.Source, f.SourceFormat, f.BytesIn, f.Target, f.TargetFormat, f.BytesOut)
	fmt.Fprintf(b, "snapshot %s\n", shortID(f.SnapshotID))
}

func formatHistoryHuman(b *strings.Builder, f *HistoryFacts) {
	if len(f.Runs) == 0 {
		b.WriteString("no recorded runs\n")
		return
	}
	for _, run := range f.Runs {
		fmt.Fprintf(b, "%s  %-8s %-9s snapshot %s", run.StartedAt, run.Operation, run.Outcome, shortID(run.SnapshotID))
		switch run.Operation {
		case "tidy":
			fmt.Fprintf(b, "  %d document(s)", run.DocumentsChanged)
		default:
			fmt.Fprintf(b, "  %d promotable", run.Promoted)
		}
		if run.ErrorCode != "" {
			fmt.Fprintf(b, "  [%s]", run.ErrorCode)
		}
		fmt.Fprintf(b, "  (%dms)\n", run.DurationMS)
	}
}

func formatStatusHuman(b *strings.Builder, f *StatusFacts) {
	fmt.Fprintf(b, "seal %s at %s\n", version.Info(), f.Root)
	if f.SnapshotError != "" {
		fmt.Fprintf(b, "snapshot: %s (%s)\n", f.SnapshotPath, f.SnapshotError)
	} else {
		fmt.Fprintf(b, "snapshot: %s (%s, id %s)\n", f.SnapshotPath, f.SnapshotFormat, shortID(f.SnapshotID))
		fmt.Fprintf(b, "  %d project(s), %d document(s), %d type(s), %d field(s)\n",
			f.Projects, f.Documents, f.Types, f.Fields)
	}
	fmt.Fprintf(b, "journal: enabled=%v runs=%d\n", f.JournalEnabled, f.JournalRuns)
	fmt.Fprintf(b, "validator: available=%v\n", f.ValidatorAvailable)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// emit renders and prints one response, failing the command on a bad
// format value.
func emit(resp *Response, format string) error {
	out, err := FormatResponse(resp, OutputFormat(format))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
