// Package diff computes line-level diffs between playbook contents. The
// alignment comes from difflib's SequenceMatcher; every output format
// (unified, side-by-side, HTML, stats) derives from the same opcodes so the
// formats never disagree about what changed.
package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const NoChangesHTML = `<div class="diff-no-changes">No changes</div>`

// Line is one side of a side-by-side diff row.
type Line struct {
	Number  int    `json:"line"`
	Content string `json:"content"`
	Tag     string `json:"tag"` // unchanged, added, deleted
}

// Change is an opcode-level range over the two line arrays. Starts and ends
// are 1-based and inclusive, matching what review UIs expect.
type Change struct {
	Type     string `json:"type"` // replace, delete, insert
	OldStart int    `json:"old_start,omitempty"`
	OldEnd   int    `json:"old_end,omitempty"`
	NewStart int    `json:"new_start,omitempty"`
	NewEnd   int    `json:"new_end,omitempty"`
}

type SideBySideDiff struct {
	HasChanges bool     `json:"has_changes"`
	OldLines   []Line   `json:"old_lines"`
	NewLines   []Line   `json:"new_lines"`
	Changes    []Change `json:"changes"`
}

type DiffStats struct {
	LinesAdded   int  `json:"lines_added"`
	LinesRemoved int  `json:"lines_removed"`
	HasChanges   bool `json:"has_changes"`
}

// Unified returns a patch-format diff with a/label and b/label headers.
// Identical inputs yield the empty string.
func Unified(oldText, newText, label string) string {
	if oldText == newText {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitKeepEnds(oldText),
		B:        splitKeepEnds(newText),
		FromFile: "a/" + label,
		ToFile:   "b/" + label,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}

// SideBySide aligns both texts line by line for two-pane rendering.
func SideBySide(oldText, newText string) SideBySideDiff {
	if oldText == newText {
		return SideBySideDiff{
			HasChanges: false,
			OldLines:   []Line{},
			NewLines:   []Line{},
			Changes:    []Change{},
		}
	}

	oldLines := splitLines(oldText)
	newLines := splitLines(newText)
	matcher := difflib.NewMatcher(oldLines, newLines)

	result := SideBySideDiff{
		HasChanges: true,
		OldLines:   []Line{},
		NewLines:   []Line{},
		Changes:    []Change{},
	}

	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for k := op.I1; k < op.I2; k++ {
				result.OldLines = append(result.OldLines, Line{Number: k + 1, Content: oldLines[k], Tag: "unchanged"})
				result.NewLines = append(result.NewLines, Line{Number: op.J1 + (k - op.I1) + 1, Content: newLines[op.J1+(k-op.I1)], Tag: "unchanged"})
			}
		case 'r':
			result.Changes = append(result.Changes, Change{
				Type:     "replace",
				OldStart: op.I1 + 1,
				OldEnd:   op.I2,
				NewStart: op.J1 + 1,
				NewEnd:   op.J2,
			})
			for k := op.I1; k < op.I2; k++ {
				result.OldLines = append(result.OldLines, Line{Number: k + 1, Content: oldLines[k], Tag: "deleted"})
			}
			for k := op.J1; k < op.J2; k++ {
				result.NewLines = append(result.NewLines, Line{Number: k + 1, Content: newLines[k], Tag: "added"})
			}
		case 'd':
			result.Changes = append(result.Changes, Change{
				Type:     "delete",
				OldStart: op.I1 + 1,
				OldEnd:   op.I2,
			})
			for k := op.I1; k < op.I2; k++ {
				result.OldLines = append(result.OldLines, Line{Number: k + 1, Content: oldLines[k], Tag: "deleted"})
			}
		case 'i':
			result.Changes = append(result.Changes, Change{
				Type:     "insert",
				NewStart: op.J1 + 1,
				NewEnd:   op.J2,
			})
			for k := op.J1; k < op.J2; k++ {
				result.NewLines = append(result.NewLines, Line{Number: k + 1, Content: newLines[k], Tag: "added"})
			}
		}
	}

	return result
}

// HTML renders the diff as markup for presentation. Uses diffmatchpatch in
// line mode so large documents stay cheap.
func HTML(oldText, newText string) string {
	if oldText == newText {
		return NoChangesHTML
	}
	dmp := diffmatchpatch.New()
	oldChars, newChars, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(oldChars, newChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)
	return dmp.DiffPrettyHtml(diffs)
}

// Stats counts added and removed lines from the opcode alignment.
func Stats(oldText, newText string) DiffStats {
	if oldText == newText {
		return DiffStats{}
	}

	matcher := difflib.NewMatcher(splitLines(oldText), splitLines(newText))
	stats := DiffStats{HasChanges: true}
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'r':
			stats.LinesRemoved += op.I2 - op.I1
			stats.LinesAdded += op.J2 - op.J1
		case 'd':
			stats.LinesRemoved += op.I2 - op.I1
		case 'i':
			stats.LinesAdded += op.J2 - op.J1
		}
	}
	return stats
}

// splitLines splits without line endings; empty text has no lines.
func splitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// splitKeepEnds splits retaining line endings, for patch output.
func splitKeepEnds(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
