// README: Job aggregate and assignment status definitions.
package job

import (
	"time"

	"wireconnect/internal/types"
)

type Status string

const (
	StatusNone              Status = "none"
	StatusCreated           Status = "created"
	StatusPendingAssignment Status = "pending_assignment"
	StatusPendingAccept     Status = "pending_accept"
	StatusPartial           Status = "partial"
	StatusAccepted          Status = "accepted"
	StatusCancelled         Status = "cancelled"
)

type Job struct {
	ID            types.ID
	ClientID      types.ID
	Category      string
	Description   string
	State         string
	City          string
	Location      *types.Point
	Price         types.Money
	WorkersNeeded int
	Status        Status

	// AssignedTechID is the single outstanding offeree while pending_accept.
	AssignedTechID *types.ID
	// AssignedTechIDs are the technicians who have accepted. Its size never
	// exceeds WorkersNeeded.
	AssignedTechIDs []types.ID
	// DeclinedTechs are never offered this job again.
	DeclinedTechs []types.ID
	// NotifiedTechs are all technicians ever offered this job.
	NotifiedTechs []types.ID
	SeenByTechs   []types.ID

	AssignedAt *time.Time
	ExpiresAt  *time.Time
	AcceptedAt *time.Time
	CreatedAt  time.Time
}

type Event struct {
	ID         int64
	JobID      types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions represents the assignment state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusCreated:           {StatusPendingAccept, StatusPendingAssignment, StatusCancelled},
	StatusPendingAssignment: {StatusPendingAccept, StatusPendingAssignment, StatusCancelled},
	StatusPendingAccept:     {StatusAccepted, StatusPartial, StatusPendingAssignment, StatusCancelled},
	StatusPartial:           {StatusPendingAccept, StatusPendingAssignment, StatusAccepted, StatusCancelled},
	// accepted and cancelled are terminal
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// reservableStatuses are the source states the conditional reservation may
// claim a job from.
var reservableStatuses = []Status{StatusCreated, StatusPendingAssignment, StatusPartial}

func Reservable(s Status) bool {
	for _, r := range reservableStatuses {
		if s == r {
			return true
		}
	}
	return false
}

// RemainingSlots is how many more acceptances the job needs.
func (j *Job) RemainingSlots() int {
	n := j.WorkersNeeded - len(j.AssignedTechIDs)
	if n < 0 {
		return 0
	}
	return n
}

// HasAccepted reports whether the technician is already in the accepted set.
func (j *Job) HasAccepted(techID types.ID) bool {
	return containsID(j.AssignedTechIDs, techID)
}

// HasDeclined reports whether the technician declined or timed out earlier.
func (j *Job) HasDeclined(techID types.ID) bool {
	return containsID(j.DeclinedTechs, techID)
}

// WasNotified reports whether the technician was ever offered this job.
func (j *Job) WasNotified(techID types.ID) bool {
	return containsID(j.NotifiedTechs, techID)
}

func containsID(ids []types.ID, id types.ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
