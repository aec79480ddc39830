package verdict

import (
	"context"
	"sync"
	"testing"

	"seal/internal/model"
	"seal/internal/slogutil"
	"seal/internal/testutil"
)

// analysisProgram has one promotable field, one field written outside its
// constructor, and one already-readonly field.
func analysisProgram(t *testing.T, snapshotID string) *model.Program {
	prog := testutil.NewProgram().
		Project("Core").
		Document("src/widget.cs", model.LangCSharp, "").
		Type("tWidget", "Widget", model.AccessPublic).
		Field("fKeep", "keep", "tWidget", model.AccessPrivate).
		Field("fHot", "hot", "tWidget", model.AccessPrivate).
		ReadonlyField("fDone", "done", "tWidget", model.AccessPrivate).
		Assign(testutil.FieldWrite("fKeep", testutil.InCtor("tWidget"), model.Span{Start: 50, End: 60})).
		Assign(testutil.FieldWrite("fHot", testutil.InMethod("tWidget"), model.Span{Start: 80, End: 90})).
		Build(t)
	prog.SnapshotID = snapshotID
	return prog
}

func newTestComputer(t *testing.T) *Computer {
	t.Helper()
	c, err := NewComputer(2, 0, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("NewComputer: %v", err)
	}
	return c
}

func TestVerdictsComputation(t *testing.T) {
	c := newTestComputer(t)
	v, err := c.Verdicts(context.Background(), analysisProgram(t, "snap-1"))
	if err != nil {
		t.Fatalf("Verdicts: %v", err)
	}

	if !v.IsPromotable("fKeep") {
		t.Error("fKeep must be promotable: only written in its own constructor")
	}
	if v.IsPromotable("fHot") {
		t.Error("fHot must not be promotable: written in an ordinary method")
	}
	if v.IsPromotable("fDone") {
		t.Error("fDone is already readonly and must not reappear")
	}

	if got := len(v.Candidates); got != 2 {
		t.Errorf("candidates = %d, want 2", got)
	}
	if got := len(v.Written); got != 1 {
		t.Errorf("written = %d, want 1", got)
	}
	if got := v.PromotableSet(); !got["fKeep"] || len(got) != 1 {
		t.Errorf("PromotableSet = %v, want {fKeep}", got)
	}
}

func TestVerdictsComputedOncePerSnapshot(t *testing.T) {
	c := newTestComputer(t)
	prog := analysisProgram(t, "snap-once")

	const callers = 16
	results := make([]*Verdicts, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Verdicts(context.Background(), prog)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatalf("caller %d received a different verdicts instance", i)
		}
	}

	// A later call is served from the cache.
	v, err := c.Verdicts(context.Background(), prog)
	if err != nil {
		t.Fatalf("cached call: %v", err)
	}
	if v != results[0] {
		t.Error("cached call returned a different verdicts instance")
	}
}

func TestCancelledComputationLeavesCacheEmpty(t *testing.T) {
	c := newTestComputer(t)
	prog := analysisProgram(t, "snap-cancel")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Verdicts(ctx, prog); err == nil {
		t.Fatal("cancelled context must fail the computation")
	}

	// The failure must not have been cached; a clean context recomputes.
	v, err := c.Verdicts(context.Background(), prog)
	if err != nil {
		t.Fatalf("recompute after cancellation: %v", err)
	}
	if !v.IsPromotable("fKeep") {
		t.Error("recomputed verdicts are wrong")
	}
}

func TestVerdictsPerSnapshotIsolation(t *testing.T) {
	c := newTestComputer(t)

	v1, err := c.Verdicts(context.Background(), analysisProgram(t, "snap-a"))
	if err != nil {
		t.Fatal(err)
	}
	v2, err := c.Verdicts(context.Background(), analysisProgram(t, "snap-b"))
	if err != nil {
		t.Fatal(err)
	}
	if v1 == v2 {
		t.Error("distinct snapshots must not share a verdicts instance")
	}
	if v1.SnapshotID == v2.SnapshotID {
		t.Error("snapshot IDs collide in fixtures")
	}
}

func TestVerdictsWithoutSnapshotIDNotCached(t *testing.T) {
	c := newTestComputer(t)
	prog := analysisProgram(t, "")

	v1, err := c.Verdicts(context.Background(), prog)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := c.Verdicts(context.Background(), prog)
	if err != nil {
		t.Fatal(err)
	}
	if v1 == v2 {
		t.Error("identity-less programs must be recomputed, not cached")
	}
}
