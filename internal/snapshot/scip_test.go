package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"seal/internal/errors"
	"seal/internal/model"
)

const (
	widgetType  = "scip-dotnet . . Core/Widget#"
	widgetCount = "scip-dotnet . . Core/Widget#count."
	widgetCtor  = "scip-dotnet . . Core/Widget#.ctor()."
	pointType   = "scip-dotnet . . Core/Point#"
	pointX      = "scip-dotnet . . Core/Point#x."
)

func scipFixture() *scippb.Index {
	return &scippb.Index{
		Documents: []*scippb.Document{
			{
				RelativePath: "core/Widget.cs",
				Language:     "csharp",
				Symbols: []*scippb.SymbolInformation{
					{
						Symbol:        widgetType,
						Kind:          scippb.SymbolInformation_Class,
						Documentation: []string{"```cs\ninternal class Widget\n```"},
					},
					{
						Symbol:        widgetCount,
						Kind:          scippb.SymbolInformation_Field,
						Documentation: []string{"```cs\nprivate int count\n```"},
					},
					{
						Symbol: widgetCtor,
						Kind:   scippb.SymbolInformation_Constructor,
					},
					{
						Symbol:        pointType,
						Kind:          scippb.SymbolInformation_Struct,
						Documentation: []string{"```cs\npublic struct Point\n```"},
					},
					{
						Symbol:        pointX,
						Kind:          scippb.SymbolInformation_Field,
						Documentation: []string{"```cs\nprivate int x\n```"},
					},
				},
				Occurrences: []*scippb.Occurrence{
					// Field declaration with its initializer: a definition,
					// not a mutation.
					{
						Symbol:      widgetCount,
						Range:       []int32{2, 16, 2, 21},
						SymbolRoles: int32(scippb.SymbolRole_Definition | scippb.SymbolRole_WriteAccess),
					},
					// Constructor definition spanning lines 4-7.
					{
						Symbol:         widgetCtor,
						Range:          []int32{4, 11, 4, 17},
						SymbolRoles:    int32(scippb.SymbolRole_Definition),
						EnclosingRange: []int32{4, 4, 7, 5},
					},
					// Write inside the constructor body.
					{
						Symbol:      widgetCount,
						Range:       []int32{5, 8, 5, 13},
						SymbolRoles: int32(scippb.SymbolRole_WriteAccess),
					},
					// Write in an ordinary method.
					{
						Symbol:      widgetCount,
						Range:       []int32{12, 8, 12, 13},
						SymbolRoles: int32(scippb.SymbolRole_WriteAccess),
					},
					// Read, ignored.
					{
						Symbol:      widgetCount,
						Range:       []int32{14, 15, 14, 20},
						SymbolRoles: int32(scippb.SymbolRole_ReadAccess),
					},
				},
			},
			{
				RelativePath: "tests/WidgetTest.cs",
				Language:     "csharp",
			},
		},
	}
}

func scipManifest() *Manifest {
	return &Manifest{
		Version: 1,
		Projects: []ManifestProject{
			{Assembly: "Core", Documents: []string{"core/"}, VisibleTo: []string{"Core.Tests"}},
			{Assembly: "Core.Tests"},
		},
	}
}

func TestConvertIndex(t *testing.T) {
	prog, err := convertIndex(scipFixture(), scipManifest())
	if err != nil {
		t.Fatalf("convertIndex: %v", err)
	}
	if err := prog.BuildIndexes(); err != nil {
		t.Fatalf("BuildIndexes: %v", err)
	}

	typ := prog.TypeByID(widgetType)
	if typ == nil {
		t.Fatal("Widget type missing")
	}
	if typ.Accessibility != model.AccessInternal {
		t.Errorf("Widget accessibility = %s, want internal", typ.Accessibility)
	}
	if typ.Assembly != "Core" {
		t.Errorf("Widget assembly = %s, want Core", typ.Assembly)
	}
	if typ.Name != "Widget" {
		t.Errorf("Widget name = %q", typ.Name)
	}

	point := prog.TypeByID(pointType)
	if point == nil || !point.ValueType {
		t.Errorf("Point = %+v, want value type", point)
	}

	field := prog.FieldByID(widgetCount)
	if field == nil {
		t.Fatal("count field missing")
	}
	if field.Accessibility != model.AccessPrivate {
		t.Errorf("count accessibility = %s, want private", field.Accessibility)
	}
	if field.DeclaringType != widgetType {
		t.Errorf("count declaring type = %q, want %q", field.DeclaringType, widgetType)
	}

	// By-ref flow through value types is invisible to SCIP, so their fields
	// never enter the model.
	if got := prog.FieldByID(pointX); got != nil {
		t.Errorf("value-type field survived conversion: %+v", got)
	}

	proj := prog.ProjectOf("Core")
	if proj == nil || len(proj.Attributes) != 1 {
		t.Fatalf("Core project attributes = %+v, want one visibility grant", proj)
	}
	if proj.Attributes[0].Arguments[0].Value != "Core.Tests" {
		t.Errorf("grant target = %q, want Core.Tests", proj.Attributes[0].Arguments[0].Value)
	}

	doc := proj.Documents[0]
	if len(doc.Assignments) != 2 {
		t.Fatalf("assignments = %d, want 2 (initializer and read excluded)", len(doc.Assignments))
	}
	ctorWrite, methodWrite := doc.Assignments[0], doc.Assignments[1]
	if !ctorWrite.Enclosing.Constructor || ctorWrite.Enclosing.DeclaringType != widgetType {
		t.Errorf("constructor write enclosing = %+v", ctorWrite.Enclosing)
	}
	if methodWrite.Enclosing.Constructor || methodWrite.Enclosing.DeclaringType != "" {
		t.Errorf("method write enclosing = %+v, want unknown member", methodWrite.Enclosing)
	}
}

func TestConvertIndexUnclaimedDocument(t *testing.T) {
	man := &Manifest{Version: 1, Projects: []ManifestProject{
		{Assembly: "Core", Documents: []string{"src/"}},
	}}
	_, err := convertIndex(scipFixture(), man)
	if errors.CodeOf(err) != errors.ManifestInvalid {
		t.Fatalf("error code = %s, want MANIFEST_INVALID", errors.CodeOf(err))
	}
}

func TestLoadSCIPEndToEnd(t *testing.T) {
	dir := t.TempDir()
	data, err := proto.Marshal(scipFixture())
	if err != nil {
		t.Fatalf("marshal index: %v", err)
	}
	indexPath := filepath.Join(dir, "index.scip")
	if err := os.WriteFile(indexPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteManifest(filepath.Join(dir, "program.toml"), scipManifest()); err != nil {
		t.Fatal(err)
	}

	prog, err := Load(indexPath, "", FormatAuto)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prog.SnapshotID == "" {
		t.Error("snapshot ID is empty")
	}
	if !prog.HasAssembly("Core.Tests") {
		t.Error("Core.Tests assembly missing")
	}
	if prog.FieldByID(widgetCount) == nil {
		t.Error("count field missing after end-to-end load")
	}
}

func TestLoadSCIPMissingManifest(t *testing.T) {
	dir := t.TempDir()
	data, _ := proto.Marshal(scipFixture())
	indexPath := filepath.Join(dir, "index.scip")
	if err := os.WriteFile(indexPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(indexPath, "", FormatAuto)
	if errors.CodeOf(err) != errors.ManifestInvalid {
		t.Fatalf("error code = %s, want MANIFEST_INVALID", errors.CodeOf(err))
	}
}

func TestParseSignatureModifiers(t *testing.T) {
	tests := []struct {
		name     string
		docs     []string
		wantAcc  model.Accessibility
		readonly bool
		konst    bool
	}{
		{
			name:    "private field",
			docs:    []string{"```cs\nprivate int count\n```"},
			wantAcc: model.AccessPrivate,
		},
		{
			name:     "internal readonly",
			docs:     []string{"```cs\ninternal readonly string name\n```"},
			wantAcc:  model.AccessInternal,
			readonly: true,
		},
		{
			name:    "protected internal",
			docs:    []string{"```cs\nprotected internal int n\n```"},
			wantAcc: model.AccessProtectedInternal,
		},
		{
			name:    "private protected",
			docs:    []string{"```cs\nprivate protected int n\n```"},
			wantAcc: model.AccessPrivateProtected,
		},
		{
			name:    "const",
			docs:    []string{"```cs\npublic const int Max = 10\n```"},
			wantAcc: model.AccessPublic,
			konst:   true,
		},
		{
			name:    "no signature defaults to public",
			docs:    []string{"Some prose mentioning private details."},
			wantAcc: model.AccessPublic,
		},
		{
			name:    "empty docs default to public",
			docs:    nil,
			wantAcc: model.AccessPublic,
		},
		{
			name:    "bare signature defaults to public",
			docs:    []string{"```cs\nint count\n```"},
			wantAcc: model.AccessPublic,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			acc, flags := parseSignatureModifiers(tc.docs)
			if acc != tc.wantAcc {
				t.Errorf("accessibility = %s, want %s", acc, tc.wantAcc)
			}
			if flags.readonly != tc.readonly {
				t.Errorf("readonly = %v, want %v", flags.readonly, tc.readonly)
			}
			if flags.konst != tc.konst {
				t.Errorf("const = %v, want %v", flags.konst, tc.konst)
			}
		})
	}
}

func TestSymbolHelpers(t *testing.T) {
	if got := declaringTypeOfTerm(widgetCount); got != widgetType {
		t.Errorf("declaringTypeOfTerm = %q, want %q", got, widgetType)
	}
	nested := "scip-dotnet . . Core/Outer#Inner#"
	if got := containingOfType(nested); got != "scip-dotnet . . Core/Outer#" {
		t.Errorf("containingOfType = %q", got)
	}
	if got := containingOfType(widgetType); got != "" {
		t.Errorf("containingOfType(top-level) = %q, want empty", got)
	}
}
