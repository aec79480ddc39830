package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"seal/internal/errors"
	"seal/internal/model"
	"seal/internal/testutil"
)

func fixtureProgram(t *testing.T) *model.Program {
	return testutil.NewProgram().
		Project("Core").
		Document("src/widget.cs", model.LangCSharp, "class Widget { int count; }").
		Type("t1", "Widget", model.AccessInternal).
		Field("f1", "count", "t1", model.AccessPrivate).
		Group("g1", model.Span{Start: 15, End: 25}, 15, "f1").
		Build(t)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteJSONSnapshot(t, dir, fixtureProgram(t))

	prog, err := Load(path, "", FormatAuto)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prog.SnapshotID == "" {
		t.Error("snapshot ID is empty")
	}
	if prog.FieldByID("f1") == nil {
		t.Error("field f1 missing after load")
	}
	if _, ok := prog.GroupByID("g1"); !ok {
		t.Error("group g1 missing after load")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "program.json"), "", FormatAuto)
	if errors.CodeOf(err) != errors.SnapshotMissing {
		t.Fatalf("error code = %s, want SNAPSHOT_MISSING", errors.CodeOf(err))
	}
}

func TestLoadUndecodable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path, "", FormatAuto)
	if errors.CodeOf(err) != errors.SnapshotInvalid {
		t.Fatalf("error code = %s, want SNAPSHOT_INVALID", errors.CodeOf(err))
	}
}

func TestLoadRejectsInvalidModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.json")
	// Valid JSON, wrong format version.
	if err := os.WriteFile(path, []byte(`{"formatVersion": 99}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path, "", FormatAuto)
	if errors.CodeOf(err) != errors.SnapshotInvalid {
		t.Fatalf("error code = %s, want SNAPSHOT_INVALID", errors.CodeOf(err))
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"program.json", FormatJSON, false},
		{".seal/program.json", FormatJSON, false},
		{"program.json.zst", FormatZstd, false},
		{"program.zst", FormatZstd, false},
		{"index.scip", FormatSCIP, false},
		{"INDEX.SCIP", FormatSCIP, false},
		{"program.bin", "", true},
	}
	for _, tc := range tests {
		got, err := DetectFormat(tc.path)
		if (err != nil) != tc.wantErr {
			t.Errorf("DetectFormat(%q) error = %v, wantErr %v", tc.path, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestPackPreservesSnapshotID(t *testing.T) {
	dir := t.TempDir()
	jsonPath := testutil.WriteJSONSnapshot(t, dir, fixtureProgram(t))
	zstPath := filepath.Join(dir, "program.json.zst")

	stats, err := Pack(jsonPath, zstPath, "")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if stats.SourceFormat != FormatJSON || stats.TargetFormat != FormatZstd {
		t.Errorf("stats formats = %s -> %s", stats.SourceFormat, stats.TargetFormat)
	}
	if stats.BytesOut == 0 {
		t.Error("BytesOut = 0")
	}

	fromJSON, err := Load(jsonPath, "", FormatAuto)
	if err != nil {
		t.Fatalf("Load json: %v", err)
	}
	fromZst, err := Load(zstPath, "", FormatAuto)
	if err != nil {
		t.Fatalf("Load zst: %v", err)
	}
	if fromJSON.SnapshotID != fromZst.SnapshotID {
		t.Errorf("snapshot IDs differ: %s vs %s", fromJSON.SnapshotID, fromZst.SnapshotID)
	}
	if stats.SnapshotID != fromJSON.SnapshotID {
		t.Errorf("pack stats ID %s, loader ID %s", stats.SnapshotID, fromJSON.SnapshotID)
	}

	// Unpacking restores the original bytes.
	backPath := filepath.Join(dir, "restored.json")
	if _, err := Pack(zstPath, backPath, ""); err != nil {
		t.Fatalf("Pack back: %v", err)
	}
	orig, _ := os.ReadFile(jsonPath)
	back, _ := os.ReadFile(backPath)
	if string(orig) != string(back) {
		t.Error("unpacked bytes differ from original")
	}
}

func TestPackRejectsSCIPTarget(t *testing.T) {
	dir := t.TempDir()
	jsonPath := testutil.WriteJSONSnapshot(t, dir, fixtureProgram(t))

	_, err := Pack(jsonPath, filepath.Join(dir, "index.scip"), "")
	if errors.CodeOf(err) != errors.SnapshotInvalid {
		t.Fatalf("error code = %s, want SNAPSHOT_INVALID", errors.CodeOf(err))
	}
}

func TestPackRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "program.json")
	if err := os.WriteFile(srcPath, []byte(`{"formatVersion": 99}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Pack(srcPath, filepath.Join(dir, "program.json.zst"), "")
	if errors.CodeOf(err) != errors.SnapshotInvalid {
		t.Fatalf("error code = %s, want SNAPSHOT_INVALID", errors.CodeOf(err))
	}
}
