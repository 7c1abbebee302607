package fix

import (
	"cmp"
	"fmt"
	"slices"
)

// ValidationError describes an invalid edit.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
}

// ConflictError describes overlapping edits.
type ConflictError struct {
	Edit1 TextEdit
	Edit2 TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.Edit1.StartOffset, e.Edit1.EndOffset,
		e.Edit2.StartOffset, e.Edit2.EndOffset)
}

// checkEdit validates a single edit against the content length.
func checkEdit(edit TextEdit, contentLen int) error {
	switch {
	case edit.StartOffset < 0:
		return &ValidationError{Edit: edit, Message: "start offset is negative"}
	case edit.EndOffset < edit.StartOffset:
		return &ValidationError{Edit: edit, Message: "end offset is before start offset"}
	case edit.EndOffset > contentLen:
		return &ValidationError{
			Edit:    edit,
			Message: fmt.Sprintf("end offset %d exceeds content length %d", edit.EndOffset, contentLen),
		}
	}
	return nil
}

// ValidateEdits checks that all edits have valid ranges for the given content length.
// Returns nil if all edits are valid, or the first validation error encountered.
func ValidateEdits(edits []TextEdit, contentLen int) error {
	for _, edit := range edits {
		if err := checkEdit(edit, contentLen); err != nil {
			return err
		}
	}
	return nil
}

// SortEdits sorts edits by start offset, then by end offset.
// This produces a deterministic order for edit application.
func SortEdits(edits []TextEdit) {
	slices.SortFunc(edits, func(a, b TextEdit) int {
		if c := cmp.Compare(a.StartOffset, b.StartOffset); c != 0 {
			return c
		}
		return cmp.Compare(a.EndOffset, b.EndOffset)
	})
}

// overlaps reports whether next intrudes on prev's range. Both must come
// from a slice ordered by SortEdits.
func overlaps(prev, next TextEdit) bool {
	return next.StartOffset < prev.EndOffset
}

// DetectConflicts checks for overlapping edits in a sorted slice.
// Returns nil if no conflicts, or the first conflict found.
// Edits must be sorted by SortEdits before calling.
func DetectConflicts(edits []TextEdit) error {
	for i := 1; i < len(edits); i++ {
		if overlaps(edits[i-1], edits[i]) {
			return &ConflictError{Edit1: edits[i-1], Edit2: edits[i]}
		}
	}
	return nil
}

// sortedCopy returns the edits sorted without mutating the caller's slice.
func sortedCopy(edits []TextEdit) []TextEdit {
	out := slices.Clone(edits)
	SortEdits(out)
	return out
}

// PrepareEdits validates, sorts, and checks for conflicts.
// Returns the sorted edits and any error encountered.
func PrepareEdits(edits []TextEdit, contentLen int) ([]TextEdit, error) {
	if len(edits) == 0 {
		return edits, nil
	}
	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, err
	}
	sorted := sortedCopy(edits)
	if err := DetectConflicts(sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}

// FilterConflicts filters out overlapping edits from a sorted slice.
// Returns the non-conflicting edits (accepted) and the conflicting edits
// (skipped). Earlier edits take precedence. Edits must be sorted by
// SortEdits before calling.
func FilterConflicts(edits []TextEdit) ([]TextEdit, []TextEdit) {
	if len(edits) == 0 {
		return nil, nil
	}

	accepted := make([]TextEdit, 0, len(edits))
	skipped := make([]TextEdit, 0)
	accepted = append(accepted, edits[0])

	for _, edit := range edits[1:] {
		if overlaps(accepted[len(accepted)-1], edit) {
			skipped = append(skipped, edit)
			continue
		}
		accepted = append(accepted, edit)
	}
	return accepted, skipped
}

// MergeAndFilterConflicts attempts to merge overlapping deletions, then
// filters any remaining conflicts. Two overlapping deletions combine into
// a single deletion covering the union of their ranges; any other overlap
// drops the later edit.
//
// Edits must be sorted by SortEdits before calling.
//
// Returns the edits to apply, the edits that were dropped, and the count
// of merges performed.
func MergeAndFilterConflicts(edits []TextEdit) ([]TextEdit, []TextEdit, int) {
	if len(edits) == 0 {
		return nil, nil, 0
	}

	accepted := make([]TextEdit, 0, len(edits))
	skipped := make([]TextEdit, 0)
	merged := 0
	current := edits[0]

	for _, edit := range edits[1:] {
		if !overlaps(current, edit) {
			accepted = append(accepted, current)
			current = edit
			continue
		}
		if current.NewText == "" && edit.NewText == "" {
			// Deletions merge into the union of the two ranges.
			current.EndOffset = max(current.EndOffset, edit.EndOffset)
			merged++
			continue
		}
		skipped = append(skipped, edit)
	}
	accepted = append(accepted, current)

	return accepted, skipped, merged
}

// PrepareEditsFiltered validates, sorts, merges, and filters conflicting
// edits. Unlike PrepareEdits it does not error on conflicts.
// Returns (accepted edits, skipped edits, merged count, error); the error
// is only for validation failures.
func PrepareEditsFiltered(edits []TextEdit, contentLen int) ([]TextEdit, []TextEdit, int, error) {
	if len(edits) == 0 {
		return nil, nil, 0, nil
	}
	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, nil, 0, err
	}
	accepted, skipped, merged := MergeAndFilterConflicts(sortedCopy(edits))
	return accepted, skipped, merged, nil
}
