package enums

import "slices"

// AssignmentStatus tracks a supplier assignment through its lifecycle.
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"
	AssignmentStatusAccepted   AssignmentStatus = "accepted"
	AssignmentStatusDeclined   AssignmentStatus = "declined"
	AssignmentStatusFulfilled  AssignmentStatus = "fulfilled"
	AssignmentStatusReassigned AssignmentStatus = "reassigned"
)

var assignmentStatuses = []AssignmentStatus{
	AssignmentStatusPending,
	AssignmentStatusAccepted,
	AssignmentStatusDeclined,
	AssignmentStatusFulfilled,
	AssignmentStatusReassigned,
}

// Terminal states have no outgoing edges.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentStatusPending:  {AssignmentStatusAccepted, AssignmentStatusDeclined, AssignmentStatusReassigned},
	AssignmentStatusAccepted: {AssignmentStatusFulfilled, AssignmentStatusReassigned},
}

// ActiveAssignmentStatuses are the states that block a new assignment for the same order.
var ActiveAssignmentStatuses = []AssignmentStatus{AssignmentStatusPending, AssignmentStatusAccepted}

func (s AssignmentStatus) String() string { return string(s) }

func (s AssignmentStatus) IsValid() bool { return slices.Contains(assignmentStatuses, s) }

// IsActive reports whether the assignment still holds the order.
func (s AssignmentStatus) IsActive() bool { return slices.Contains(ActiveAssignmentStatuses, s) }

// CanTransitionTo reports whether moving from s to next is allowed.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	return slices.Contains(assignmentTransitions[s], next)
}

func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	return parse("assignment status", value, assignmentStatuses)
}
