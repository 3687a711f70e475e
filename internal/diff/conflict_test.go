package diff

import "testing"

const conflictBase = "line one\nline two\nline three\nline four\n"

func TestHasConflictsIdenticalEdits(t *testing.T) {
	edited := "line one\nCHANGED\nline three\nline four\n"
	if HasConflicts(conflictBase, edited, edited) {
		t.Fatalf("identical edits must not conflict")
	}
}

func TestHasConflictsNoCurrentChanges(t *testing.T) {
	proposed := "line one\nCHANGED\nline three\nline four\n"
	if HasConflicts(conflictBase, conflictBase, proposed) {
		t.Fatalf("expected no conflict when current equals base")
	}
}

func TestHasConflictsDisjointEdits(t *testing.T) {
	current := "EDIT A\nline two\nline three\nline four\n"
	proposed := "line one\nline two\nline three\nEDIT B\n"
	if HasConflicts(conflictBase, current, proposed) {
		t.Fatalf("disjoint edits must not conflict")
	}
}

func TestHasConflictsOverlappingEdits(t *testing.T) {
	current := "line one\nCURRENT EDIT\nline three\nline four\n"
	proposed := "line one\nPROPOSED EDIT\nline three\nline four\n"
	if !HasConflicts(conflictBase, current, proposed) {
		t.Fatalf("same-line edits must conflict")
	}
}

func TestHasConflictsConcurrentInsertsAtSameGap(t *testing.T) {
	current := "line one\nline two\nINSERT A\nline three\nline four\n"
	proposed := "line one\nline two\nINSERT B\nline three\nline four\n"
	if !HasConflicts(conflictBase, current, proposed) {
		t.Fatalf("inserts at the same position must conflict")
	}
}

func TestThreeWayMergeNoConflictTakesProposed(t *testing.T) {
	current := "EDIT A\nline two\nline three\nline four\n"
	proposed := "line one\nline two\nline three\nEDIT B\n"
	result := ThreeWayMerge(conflictBase, current, proposed)
	if !result.Success {
		t.Fatalf("expected success: %+v", result)
	}
	if result.MergedText != proposed {
		t.Fatalf("expected proposed content, got %q", result.MergedText)
	}
	if len(result.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %+v", result.Conflicts)
	}
}

func TestThreeWayMergeConflictCarriesAllTexts(t *testing.T) {
	current := "line one\nCURRENT\nline three\nline four\n"
	proposed := "line one\nPROPOSED\nline three\nline four\n"
	result := ThreeWayMerge(conflictBase, current, proposed)
	if result.Success {
		t.Fatalf("expected conflict")
	}
	if result.MergedText != "" {
		t.Fatalf("expected no merged text, got %q", result.MergedText)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected one conflict descriptor, got %d", len(result.Conflicts))
	}
	c := result.Conflicts[0]
	if c.BaseText != conflictBase || c.CurrentText != current || c.ProposedText != proposed {
		t.Fatalf("conflict descriptor incomplete: %+v", c)
	}
}

func TestMergeComposesDisjointEdits(t *testing.T) {
	ours := "OURS\nline two\nline three\nline four\n"
	theirs := "line one\nline two\nline three\nTHEIRS\n"
	merged, ok := Merge(conflictBase, ours, theirs)
	if !ok {
		t.Fatalf("expected merge to succeed")
	}
	want := "OURS\nline two\nline three\nTHEIRS\n"
	if merged != want {
		t.Fatalf("merged = %q, want %q", merged, want)
	}
}

func TestMergeFastForwardWhenOursUnmodified(t *testing.T) {
	theirs := "line one\nUPSTREAM\nline three\nline four\n"
	merged, ok := Merge(conflictBase, conflictBase, theirs)
	if !ok || merged != theirs {
		t.Fatalf("expected fast-forward to theirs, got %q ok=%v", merged, ok)
	}
}

func TestMergeKeepsOursWhenTheirsUnmodified(t *testing.T) {
	ours := "line one\nLOCAL\nline three\nline four\n"
	merged, ok := Merge(conflictBase, ours, conflictBase)
	if !ok || merged != ours {
		t.Fatalf("expected ours kept, got %q ok=%v", merged, ok)
	}
}

func TestMergeInsertionAndEdit(t *testing.T) {
	ours := "line one\nline two\nline three\nline four\nAPPENDED\n"
	theirs := "line one\nCHANGED TWO\nline three\nline four\n"
	merged, ok := Merge(conflictBase, ours, theirs)
	if !ok {
		t.Fatalf("expected merge to succeed")
	}
	want := "line one\nCHANGED TWO\nline three\nline four\nAPPENDED\n"
	if merged != want {
		t.Fatalf("merged = %q, want %q", merged, want)
	}
}

func TestMergeRejectsOverlap(t *testing.T) {
	ours := "line one\nOURS\nline three\nline four\n"
	theirs := "line one\nTHEIRS\nline three\nline four\n"
	if _, ok := Merge(conflictBase, ours, theirs); ok {
		t.Fatalf("expected overlap to fail")
	}
}
