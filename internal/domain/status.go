package domain

// validStatusTransitions defines the legal task status transitions.
// Each key is a source status, and the value is the set of valid targets.
var validStatusTransitions = map[TaskStatus]map[TaskStatus]bool{
	StatusProposed: {StatusApproved: true, StatusRejected: true},
	StatusApproved: {StatusExecutedSuccess: true, StatusExecutedFailure: true},
}

// IsValidStatusTransition checks if a task status transition is legal.
func IsValidStatusTransition(from, to TaskStatus) bool {
	targets, ok := validStatusTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// IsTerminal reports whether a status admits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	_, ok := validStatusTransitions[s]
	return !ok
}
