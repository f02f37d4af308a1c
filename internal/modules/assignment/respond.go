// README: Acceptance handler: technician accept/decline with offeree authorization.
package assignment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"wireconnect/internal/modules/job"
	"wireconnect/internal/types"
)

const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

var (
	// ErrNotOfferee means the responding technician does not hold the offer.
	ErrNotOfferee = errors.New("job is not offered to this technician")
	ErrBadAction  = errors.New("unknown response action")
)

// Respond processes a technician's answer to an offer. Accept is idempotent;
// a decline that lost the race against the expiry timer is a no-op success.
// Both may trigger a follow-up assignment round after the response returns.
func (e *Engine) Respond(ctx context.Context, jobID, techID types.ID, action string) (*job.Job, error) {
	switch action {
	case ActionAccept:
		return e.accept(ctx, jobID, techID)
	case ActionDecline:
		return e.declineByTech(ctx, jobID, techID)
	default:
		return nil, ErrBadAction
	}
}

func (e *Engine) accept(ctx context.Context, jobID, techID types.ID) (*job.Job, error) {
	j, err := e.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.HasAccepted(techID) {
		return j, nil
	}

	var updated *job.Job
	switch {
	case j.Status == job.StatusPendingAccept && j.AssignedTechID != nil && *j.AssignedTechID == techID:
		updated, err = e.store.Accept(ctx, jobID, techID)
	case j.Status == job.StatusPartial && j.WasNotified(techID) && !j.HasDeclined(techID):
		updated, err = e.store.AcceptStandby(ctx, jobID, techID)
	default:
		return nil, ErrNotOfferee
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Lost a race between the read and the update. Re-read to tell a
		// duplicate accept apart from an offer that moved on.
		j, err = e.store.Get(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if j.HasAccepted(techID) {
			return j, nil
		}
		return nil, ErrNotOfferee
	}

	_ = e.store.AppendEvent(ctx, &job.Event{
		JobID:      jobID,
		FromStatus: j.Status,
		ToStatus:   updated.Status,
		ActorType:  "technician",
		ActorID:    &techID,
		CreatedAt:  time.Now(),
	})
	e.logger.Info("offer accepted",
		slog.String("job_id", string(jobID)),
		slog.String("tech_id", string(techID)),
		slog.String("status", string(updated.Status)),
		slog.Int("remaining_slots", updated.RemainingSlots()),
	)

	if updated.Status == job.StatusPartial && updated.RemainingSlots() > 0 {
		e.assignAsync(jobID)
	}
	return updated, nil
}

func (e *Engine) declineByTech(ctx context.Context, jobID, techID types.ID) (*job.Job, error) {
	updated, err := e.store.Decline(ctx, jobID, techID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		j, err := e.store.Get(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if j.HasDeclined(techID) {
			// The expiry timer got there first; the decline already stands.
			return j, nil
		}
		return nil, ErrNotOfferee
	}

	_ = e.store.AppendEvent(ctx, &job.Event{
		JobID:      jobID,
		FromStatus: job.StatusPendingAccept,
		ToStatus:   job.StatusPendingAssignment,
		ActorType:  "technician",
		ActorID:    &techID,
		CreatedAt:  time.Now(),
	})
	e.logger.Info("offer declined",
		slog.String("job_id", string(jobID)), slog.String("tech_id", string(techID)))

	e.assignAsync(jobID)
	return updated, nil
}
