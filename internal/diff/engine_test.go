package diff

import (
	"strings"
	"testing"
)

func TestUnifiedIdenticalInputs(t *testing.T) {
	for _, text := range []string{"", "Hello\n", "Hello\nWorld\n", "no trailing newline"} {
		if got := Unified(text, text, "content.md"); got != "" {
			t.Fatalf("expected empty diff for identical input %q, got %q", text, got)
		}
	}
}

func TestUnifiedSingleLineChange(t *testing.T) {
	got := Unified("Hello\nWorld\n", "Hello\nWorld!\n", "content.md")
	if !strings.Contains(got, "--- a/content.md") || !strings.Contains(got, "+++ b/content.md") {
		t.Fatalf("missing headers: %q", got)
	}
	if !strings.Contains(got, "-World\n") {
		t.Fatalf("missing removed line: %q", got)
	}
	if !strings.Contains(got, "+World!\n") {
		t.Fatalf("missing added line: %q", got)
	}
}

func TestStatsSingleLineChange(t *testing.T) {
	stats := Stats("Hello\nWorld\n", "Hello\nWorld!\n")
	if !stats.HasChanges {
		t.Fatalf("expected changes")
	}
	if stats.LinesAdded != 1 || stats.LinesRemoved != 1 {
		t.Fatalf("expected +1/-1, got +%d/-%d", stats.LinesAdded, stats.LinesRemoved)
	}
}

func TestStatsEmptyOldReportsAllAdded(t *testing.T) {
	stats := Stats("", "one\ntwo\nthree\n")
	if stats.LinesAdded != 3 || stats.LinesRemoved != 0 {
		t.Fatalf("expected +3/-0, got +%d/-%d", stats.LinesAdded, stats.LinesRemoved)
	}
}

func TestStatsEmptyNewReportsAllRemoved(t *testing.T) {
	stats := Stats("one\ntwo\n", "")
	if stats.LinesAdded != 0 || stats.LinesRemoved != 2 {
		t.Fatalf("expected +0/-2, got +%d/-%d", stats.LinesAdded, stats.LinesRemoved)
	}
}

func TestSideBySideIdentical(t *testing.T) {
	result := SideBySide("same\n", "same\n")
	if result.HasChanges {
		t.Fatalf("expected no changes")
	}
	if len(result.OldLines) != 0 || len(result.NewLines) != 0 || len(result.Changes) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestSideBySideReplace(t *testing.T) {
	result := SideBySide("keep\nold line\nkeep2\n", "keep\nnew line\nkeep2\n")
	if !result.HasChanges {
		t.Fatalf("expected changes")
	}
	if len(result.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(result.Changes))
	}
	change := result.Changes[0]
	if change.Type != "replace" || change.OldStart != 2 || change.OldEnd != 2 || change.NewStart != 2 || change.NewEnd != 2 {
		t.Fatalf("unexpected change: %+v", change)
	}

	var deleted, added []string
	for _, line := range result.OldLines {
		if line.Tag == "deleted" {
			deleted = append(deleted, line.Content)
		}
	}
	for _, line := range result.NewLines {
		if line.Tag == "added" {
			added = append(added, line.Content)
		}
	}
	if len(deleted) != 1 || deleted[0] != "old line" {
		t.Fatalf("unexpected deleted lines: %v", deleted)
	}
	if len(added) != 1 || added[0] != "new line" {
		t.Fatalf("unexpected added lines: %v", added)
	}
}

func TestSideBySideInsertAndDelete(t *testing.T) {
	insert := SideBySide("a\nb\n", "a\nx\nb\n")
	if len(insert.Changes) != 1 || insert.Changes[0].Type != "insert" {
		t.Fatalf("expected insert change, got %+v", insert.Changes)
	}

	del := SideBySide("a\nx\nb\n", "a\nb\n")
	if len(del.Changes) != 1 || del.Changes[0].Type != "delete" {
		t.Fatalf("expected delete change, got %+v", del.Changes)
	}
}

func TestSideBySideLineNumbering(t *testing.T) {
	result := SideBySide("a\nb\nc\n", "a\nB\nc\n")
	for _, line := range result.OldLines {
		if line.Tag == "unchanged" && line.Content == "c" && line.Number != 3 {
			t.Fatalf("expected old line c at 3, got %d", line.Number)
		}
	}
	for _, line := range result.NewLines {
		if line.Content == "B" && line.Number != 2 {
			t.Fatalf("expected new line B at 2, got %d", line.Number)
		}
	}
}

func TestHTMLIdenticalReturnsSentinel(t *testing.T) {
	if got := HTML("same\n", "same\n"); got != NoChangesHTML {
		t.Fatalf("expected sentinel, got %q", got)
	}
}

func TestHTMLContainsMarkup(t *testing.T) {
	got := HTML("old\n", "new\n")
	if !strings.Contains(got, "<del") || !strings.Contains(got, "<ins") {
		t.Fatalf("expected del/ins markup, got %q", got)
	}
}
