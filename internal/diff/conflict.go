package diff

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// Conflict describes an overlap that needs manual resolution. All three
// texts are carried so a client can build a resolution UI.
type Conflict struct {
	Type         string `json:"type"`
	Message      string `json:"message"`
	BaseText     string `json:"base_text"`
	CurrentText  string `json:"current_text"`
	ProposedText string `json:"proposed_text"`
}

type MergeResult struct {
	Success    bool       `json:"success"`
	MergedText string     `json:"merged_text,omitempty"`
	Conflicts  []Conflict `json:"conflicts,omitempty"`
}

// HasConflicts reports whether the current and proposed edits touch
// overlapping base lines. Identical edits on both sides are agreed changes,
// not conflicts.
func HasConflicts(baseText, currentText, proposedText string) bool {
	if currentText == proposedText {
		return false
	}

	baseLines := splitLines(baseText)
	currentTouched := touchedBaseLines(baseLines, splitLines(currentText))
	if len(currentTouched) == 0 {
		return false
	}
	proposedTouched := touchedBaseLines(baseLines, splitLines(proposedText))

	for idx := range proposedTouched {
		if _, ok := currentTouched[idx]; ok {
			return true
		}
	}
	return false
}

// ThreeWayMerge succeeds with the proposed content when no base lines
// overlap; overlapping edits are never reconciled automatically.
func ThreeWayMerge(baseText, currentText, proposedText string) MergeResult {
	if !HasConflicts(baseText, currentText, proposedText) {
		return MergeResult{
			Success:    true,
			MergedText: proposedText,
			Conflicts:  []Conflict{},
		}
	}

	return MergeResult{
		Success: false,
		Conflicts: []Conflict{{
			Type:         "conflict",
			Message:      "Manual merge required",
			BaseText:     baseText,
			CurrentText:  currentText,
			ProposedText: proposedText,
		}},
	}
}

// Merge composes non-overlapping edits from both sides onto the base. It is
// the line-level reconciliation used by fork sync, where local edits must
// survive the origin moving forward. Returns false when the sides overlap.
func Merge(baseText, oursText, theirsText string) (string, bool) {
	if oursText == theirsText {
		return oursText, true
	}
	if oursText == baseText {
		return theirsText, true
	}
	if theirsText == baseText {
		return oursText, true
	}

	baseLines := splitKeepEnds(baseText)
	oursEdits := collectEdits(baseLines, splitKeepEnds(oursText))
	theirsEdits := collectEdits(baseLines, splitKeepEnds(theirsText))

	if editsOverlap(oursEdits, theirsEdits) {
		return "", false
	}

	edits := append(append([]edit{}, oursEdits...), theirsEdits...)
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start < edits[j].start
		}
		return edits[i].end < edits[j].end
	})

	var out []string
	pos := 0
	for _, e := range edits {
		out = append(out, baseLines[pos:e.start]...)
		out = append(out, e.lines...)
		pos = e.end
	}
	out = append(out, baseLines[pos:]...)

	merged := ""
	for _, line := range out {
		merged += line
	}
	return merged, true
}

// edit replaces base lines [start, end) with replacement lines; start == end
// is a pure insertion at that gap.
type edit struct {
	start, end int
	lines      []string
}

func collectEdits(baseLines, otherLines []string) []edit {
	matcher := difflib.NewMatcher(baseLines, otherLines)
	var edits []edit
	for _, op := range matcher.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		edits = append(edits, edit{
			start: op.I1,
			end:   op.I2,
			lines: otherLines[op.J1:op.J2],
		})
	}
	return edits
}

func editsOverlap(ours, theirs []edit) bool {
	touched := make(map[int]struct{})
	for _, e := range ours {
		markEdit(touched, e)
	}
	for _, e := range theirs {
		start, end := editSpan(e)
		for k := start; k < end; k++ {
			if _, ok := touched[k]; ok {
				return true
			}
		}
	}
	return false
}

func markEdit(touched map[int]struct{}, e edit) {
	start, end := editSpan(e)
	for k := start; k < end; k++ {
		touched[k] = struct{}{}
	}
}

// editSpan widens an insertion to its gap index so concurrent inserts at the
// same position count as a collision.
func editSpan(e edit) (int, int) {
	if e.start == e.end {
		return e.start, e.start + 1
	}
	return e.start, e.end
}

// touchedBaseLines maps the non-equal opcodes of the base→other alignment to
// the base-side line indices they touch. Insertions mark their gap index.
func touchedBaseLines(baseLines, otherLines []string) map[int]struct{} {
	matcher := difflib.NewMatcher(baseLines, otherLines)
	touched := make(map[int]struct{})
	for _, op := range matcher.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		if op.I1 == op.I2 {
			touched[op.I1] = struct{}{}
			continue
		}
		for k := op.I1; k < op.I2; k++ {
			touched[k] = struct{}{}
		}
	}
	return touched
}
