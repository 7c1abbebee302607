package fix

import (
	"fmt"
	"slices"
	"strings"
)

// Diff represents a unified diff between original and modified content.
type Diff struct {
	// Path is the file path for the diff header.
	Path string

	// Original is the original file content.
	Original []byte

	// Modified is the modified file content.
	Modified []byte

	// Hunks contains the diff hunks.
	Hunks []DiffHunk

	// Additions is the number of lines added.
	Additions int

	// Deletions is the number of lines deleted.
	Deletions int
}

// DiffHunk represents a single hunk in a unified diff.
type DiffHunk struct {
	// OriginalStart is the 1-based line number where the hunk starts in the original.
	OriginalStart int

	// OriginalCount is the number of lines from the original in this hunk.
	OriginalCount int

	// ModifiedStart is the 1-based line number where the hunk starts in the modified.
	ModifiedStart int

	// ModifiedCount is the number of lines from the modified in this hunk.
	ModifiedCount int

	// Lines contains the diff lines in this hunk.
	Lines []DiffLine
}

// DiffLine represents a single line in a diff hunk.
type DiffLine struct {
	// Kind indicates whether this is a context, add, or remove line.
	Kind DiffLineKind

	// Content is the line content (without the diff prefix).
	Content string
}

// DiffLineKind indicates the type of diff line.
type DiffLineKind int

const (
	// DiffLineContext is an unchanged context line.
	DiffLineContext DiffLineKind = iota

	// DiffLineAdd is a line added in the modified version.
	DiffLineAdd

	// DiffLineRemove is a line removed from the original version.
	DiffLineRemove
)

// prefix is the leading character for the line in unified diff output.
func (k DiffLineKind) prefix() byte {
	switch k {
	case DiffLineAdd:
		return '+'
	case DiffLineRemove:
		return '-'
	default:
		return ' '
	}
}

// contextLines is the number of context lines to show around changes.
const contextLines = 3

// GenerateDiff creates a unified diff between original and modified content.
// Returns nil if there are no changes.
func GenerateDiff(path string, original, modified []byte) *Diff {
	if len(original) == 0 && len(modified) == 0 {
		return nil
	}

	origLines := splitLines(original)
	modLines := splitLines(modified)
	if slices.Equal(origLines, modLines) {
		return nil
	}

	ops := diffOps(origLines, modLines)
	hunks := buildHunks(ops)
	if len(hunks) == 0 {
		return nil
	}

	diff := &Diff{
		Path:     path,
		Original: original,
		Modified: modified,
		Hunks:    hunks,
	}
	for _, op := range ops {
		switch op.kind {
		case DiffLineAdd:
			diff.Additions++
		case DiffLineRemove:
			diff.Deletions++
		}
	}
	return diff
}

// GitHeader returns the "diff --git" header line.
func (d *Diff) GitHeader() string {
	if d == nil {
		return ""
	}
	path := strings.TrimPrefix(d.Path, "/")
	return fmt.Sprintf("diff --git a/%s b/%s", path, path)
}

// String returns the diff in unified diff format (without the git header).
func (d *Diff) String() string {
	if d == nil || len(d.Hunks) == 0 {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var out strings.Builder
	fmt.Fprintf(&out, "--- a/%s\n", path)
	fmt.Fprintf(&out, "+++ b/%s\n", path)

	for _, hunk := range d.Hunks {
		fmt.Fprintf(&out, "@@ -%d,%d +%d,%d @@\n",
			hunk.OriginalStart, hunk.OriginalCount,
			hunk.ModifiedStart, hunk.ModifiedCount)
		for _, line := range hunk.Lines {
			out.WriteByte(line.Kind.prefix())
			out.WriteString(line.Content)
			out.WriteByte('\n')
		}
	}
	return out.String()
}

// FullString returns the complete diff including the git header.
func (d *Diff) FullString() string {
	if d == nil || len(d.Hunks) == 0 {
		return ""
	}
	return d.GitHeader() + "\n" + d.String()
}

// HasChanges returns true if the diff contains any changes.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// splitLines splits content into lines, dropping the empty tail a
// trailing newline produces.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.Split(string(content), "\n")
	if last := len(lines) - 1; lines[last] == "" {
		return lines[:last]
	}
	return lines
}

// diffOp is one line of the edit script.
type diffOp struct {
	kind    DiffLineKind
	content string
}

// diffOps computes a line-level edit script. lcsFrom[r][c] holds the LCS
// length of orig[r:] and mod[c:], which lets a single forward walk emit
// ops in output order without backtracking.
func diffOps(orig, mod []string) []diffOp {
	origLen, modLen := len(orig), len(mod)

	lcsFrom := make([][]int, origLen+1)
	for r := range lcsFrom {
		lcsFrom[r] = make([]int, modLen+1)
	}
	for r := origLen - 1; r >= 0; r-- {
		for c := modLen - 1; c >= 0; c-- {
			if orig[r] == mod[c] {
				lcsFrom[r][c] = lcsFrom[r+1][c+1] + 1
			} else {
				lcsFrom[r][c] = max(lcsFrom[r+1][c], lcsFrom[r][c+1])
			}
		}
	}

	ops := make([]diffOp, 0, origLen+modLen)
	r, c := 0, 0
	for r < origLen && c < modLen {
		switch {
		case orig[r] == mod[c]:
			ops = append(ops, diffOp{DiffLineContext, orig[r]})
			r++
			c++
		case lcsFrom[r+1][c] >= lcsFrom[r][c+1]:
			ops = append(ops, diffOp{DiffLineRemove, orig[r]})
			r++
		default:
			ops = append(ops, diffOp{DiffLineAdd, mod[c]})
			c++
		}
	}
	for ; r < origLen; r++ {
		ops = append(ops, diffOp{DiffLineRemove, orig[r]})
	}
	for ; c < modLen; c++ {
		ops = append(ops, diffOp{DiffLineAdd, mod[c]})
	}

	return groupChanges(ops)
}

// groupChanges reorders each run of changed lines as removals followed by
// additions, the conventional unified diff presentation.
func groupChanges(ops []diffOp) []diffOp {
	out := make([]diffOp, 0, len(ops))
	var removes, adds []diffOp
	flush := func() {
		out = append(out, removes...)
		out = append(out, adds...)
		removes, adds = removes[:0], adds[:0]
	}
	for _, op := range ops {
		switch op.kind {
		case DiffLineContext:
			flush()
			out = append(out, op)
		case DiffLineRemove:
			removes = append(removes, op)
		case DiffLineAdd:
			adds = append(adds, op)
		}
	}
	flush()
	return out
}

// buildHunks cuts the op stream into hunks, attaching up to contextLines
// of unchanged lines on each side and merging changes whose context
// would otherwise touch or overlap.
func buildHunks(ops []diffOp) []DiffHunk {
	var changed []int
	for idx, op := range ops {
		if op.kind != DiffLineContext {
			changed = append(changed, idx)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	var hunks []DiffHunk
	for idx := 0; idx < len(changed); {
		end := idx
		for end+1 < len(changed) && changed[end+1]-changed[end] <= contextLines*2+1 {
			end++
		}
		hunks = append(hunks, cutHunk(ops, changed[idx], changed[end]))
		idx = end + 1
	}
	return hunks
}

// cutHunk builds one hunk covering ops[firstChange..lastChange] plus
// surrounding context.
func cutHunk(ops []diffOp, firstChange, lastChange int) DiffHunk {
	start := max(0, firstChange-contextLines)
	end := min(len(ops), lastChange+1+contextLines)

	hunk := DiffHunk{OriginalStart: 1, ModifiedStart: 1}
	for _, op := range ops[:start] {
		if op.kind != DiffLineAdd {
			hunk.OriginalStart++
		}
		if op.kind != DiffLineRemove {
			hunk.ModifiedStart++
		}
	}
	for _, op := range ops[start:end] {
		hunk.Lines = append(hunk.Lines, DiffLine{Kind: op.kind, Content: op.content})
		if op.kind != DiffLineAdd {
			hunk.OriginalCount++
		}
		if op.kind != DiffLineRemove {
			hunk.ModifiedCount++
		}
	}
	return hunk
}
