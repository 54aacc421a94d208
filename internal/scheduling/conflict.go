package scheduling

import "github.com/derslik/derslik-api/internal/models"

// FindConflict returns the first existing lesson whose interval overlaps the
// candidate, or nil when the slot is free. A lesson matching ignoreID is
// skipped so an edited or dragged lesson never collides with its own
// unmodified copy.
//
// The scan is O(n) over the snapshot; a single teacher's lesson set stays
// small enough that an interval index would buy nothing.
func FindConflict(candidate TimeInterval, existing []models.Lesson, ignoreID string) *models.Lesson {
	for i := range existing {
		if ignoreID != "" && existing[i].ID == ignoreID {
			continue
		}
		if candidate.Overlaps(LessonInterval(existing[i])) {
			return &existing[i]
		}
	}
	return nil
}

// HasConflict reports whether the candidate overlaps any lesson in the
// snapshot, honoring ignoreID.
func HasConflict(candidate TimeInterval, existing []models.Lesson, ignoreID string) bool {
	return FindConflict(candidate, existing, ignoreID) != nil
}
