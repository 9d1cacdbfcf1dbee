package domain

// SnoozeState maps each household recipient to its skip-next flag.
// A valid state always contains exactly the full household key set.
type SnoozeState map[RecipientID]bool

// NewSnoozeState returns the default state: nobody snoozed.
func NewSnoozeState() SnoozeState {
	s := make(SnoozeState, len(HouseholdIDs))
	for _, id := range HouseholdIDs {
		s[id] = false
	}
	return s
}

// Snoozed reports whether the given recipient's next notification is
// suppressed. Unknown ids (legacy numbers) are never snoozed.
func (s SnoozeState) Snoozed(id RecipientID) bool {
	return s[id]
}

// Set updates one recipient's flag and returns the state for chaining.
func (s SnoozeState) Set(id RecipientID, snoozed bool) SnoozeState {
	s[id] = snoozed
	return s
}

// Normalize drops unknown keys and fills missing household keys with
// false, restoring the exactly-full-key-set invariant.
func (s SnoozeState) Normalize() SnoozeState {
	out := NewSnoozeState()
	for _, id := range HouseholdIDs {
		if v, ok := s[id]; ok {
			out[id] = v
		}
	}
	return out
}

// Clone returns an independent copy.
func (s SnoozeState) Clone() SnoozeState {
	out := make(SnoozeState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
