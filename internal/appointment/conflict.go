package appointment

// FindConflict returns the first existing appointment that clashes with the
// candidate: same provider, not cancelled, and starting within
// OverlapThreshold of it. Conflicts are pairwise; no grouping is done.
func FindConflict(candidate *Appointment, existing []*Appointment) (*Appointment, bool) {
	for _, other := range existing {
		if other.ID == candidate.ID {
			continue
		}
		if other.Provider != candidate.Provider {
			continue
		}
		if other.Status == StatusCancelled {
			continue
		}
		if candidate.Overlaps(other) {
			return other, true
		}
	}
	return nil, false
}
