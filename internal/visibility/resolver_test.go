package visibility

import (
	"testing"

	"seal/internal/model"
	"seal/internal/testutil"
)

// simpleProgram builds one assembly Core with the given visibility grants, a
// companion in-program assembly Core.Tests, and one field per accessibility
// arrangement under test.
func simpleProgram(t *testing.T, grants ...string) *model.Program {
	b := testutil.NewProgram().Project("Core")
	for _, g := range grants {
		b.VisibleTo(g)
	}
	b.Document("src/widget.cs", model.LangCSharp, "").
		Type("tPub", "Widget", model.AccessPublic).
		Type("tInt", "Hidden", model.AccessInternal).
		Type("tPriv", "Secret", model.AccessPrivate).
		Type("tDefault", "Plain", model.AccessUnspecified).
		NestedType("tNested", "Inner", "tPriv", model.AccessPublic).
		Field("fPrivate", "a", "tPub", model.AccessPrivate).
		Field("fPublic", "b", "tPub", model.AccessPublic).
		Field("fProtected", "c", "tPub", model.AccessProtected).
		Field("fInternal", "d", "tPub", model.AccessInternal).
		Field("fPrivProt", "e", "tPub", model.AccessPrivateProtected).
		Field("fDefault", "f", "tPub", model.AccessUnspecified).
		Field("fPubOfInt", "g", "tInt", model.AccessPublic).
		Field("fPubOfDefault", "h", "tDefault", model.AccessPublic).
		Field("fPubOfNested", "i", "tNested", model.AccessPublic).
		Field("fOrphan", "j", "tMissing", model.AccessInternal)
	b.Project("Core.Tests").
		Document("tests/widget_test.cs", model.LangCSharp, "")
	return b.Build(t)
}

func TestFieldReachable(t *testing.T) {
	tests := []struct {
		name   string
		grants []string
		field  string
		want   bool
	}{
		{"private never via visibility", nil, "fPrivate", false},
		{"public field of public type", nil, "fPublic", true},
		{"protected field of public type", nil, "fProtected", true},
		{"unspecified field defaults to private", nil, "fDefault", false},

		{"internal field without grants", nil, "fInternal", false},
		{"internal field with in-program grant", []string{"Core.Tests"}, "fInternal", false},
		{"internal field with out-of-program grant", []string{"ExternalConsumer"}, "fInternal", true},
		{"internal field with mixed grants", []string{"Core.Tests", "ExternalConsumer"}, "fInternal", true},
		{"grant with key suffix matches base name", []string{"Core.Tests, PublicKey=0024abc"}, "fInternal", false},
		{"private protected follows assembly boundary", []string{"ExternalConsumer"}, "fPrivProt", true},
		{"private protected without leak", []string{"Core.Tests"}, "fPrivProt", false},

		{"public field of internal type without grants", nil, "fPubOfInt", false},
		{"public field of internal type with leak", []string{"ExternalConsumer"}, "fPubOfInt", true},
		{"unspecified type defaults to internal", nil, "fPubOfDefault", false},
		{"public field nested in private type", []string{"ExternalConsumer"}, "fPubOfNested", false},

		{"unknown declaring type stays reachable", nil, "fOrphan", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prog := simpleProgram(t, tc.grants...)
			r := NewResolver(prog)
			f := prog.FieldByID(tc.field)
			if f == nil {
				t.Fatalf("fixture has no field %s", tc.field)
			}
			if got := r.FieldReachable(f); got != tc.want {
				t.Errorf("FieldReachable(%s) = %v, want %v", tc.field, got, tc.want)
			}
		})
	}
}

func TestMalformedExtensionsSkipped(t *testing.T) {
	b := testutil.NewProgram().Project("Core").
		Attr(model.Attribute{Name: model.VisibilityExtensionAttr}).
		Attr(model.Attribute{Name: model.VisibilityExtensionAttr, Arguments: []model.AttributeArg{
			{Kind: model.AttrKindString, Value: "A"},
			{Kind: model.AttrKindString, Value: "B"},
		}}).
		Attr(model.Attribute{Name: model.VisibilityExtensionAttr, Arguments: []model.AttributeArg{
			{Kind: "int", Value: "42"},
		}}).
		Attr(model.Attribute{Name: model.VisibilityExtensionAttr, Arguments: []model.AttributeArg{
			{Kind: model.AttrKindString, Value: "   "},
		}}).
		Attr(model.Attribute{Name: "Obsolete", Arguments: []model.AttributeArg{
			{Kind: model.AttrKindString, Value: "ExternalConsumer"},
		}}).
		Document("src/a.cs", model.LangCSharp, "").
		Type("t1", "Widget", model.AccessPublic).
		Field("f1", "count", "t1", model.AccessInternal)
	prog := b.Build(t)

	r := NewResolver(prog)
	if r.FieldReachable(prog.FieldByID("f1")) {
		t.Error("malformed or irrelevant attributes must not make internals reachable")
	}
}

func TestLeakMemoizedPerAssembly(t *testing.T) {
	prog := simpleProgram(t)
	r := NewResolver(prog)
	f := prog.FieldByID("fInternal")

	if r.FieldReachable(f) {
		t.Fatal("no grants yet, field must not be reachable")
	}

	// Mutating attributes mid-run must not change the memoized answer.
	proj := prog.ProjectOf("Core")
	proj.Attributes = append(proj.Attributes, model.Attribute{
		Name:      model.VisibilityExtensionAttr,
		Arguments: []model.AttributeArg{{Kind: model.AttrKindString, Value: "ExternalConsumer"}},
	})
	if r.FieldReachable(f) {
		t.Error("leak determination must be computed once per assembly and reused")
	}
}
