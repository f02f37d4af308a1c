// README: Assignment engine: ranked-candidate reservation loop, offer expiry, exhaustion.
package assignment

import (
	"context"
	"log/slog"
	"time"

	"wireconnect/internal/config"
	"wireconnect/internal/modules/job"
	"wireconnect/internal/modules/matching"
	"wireconnect/internal/types"
)

// JobStore is the reservation store the engine drives. Every mutation is a
// conditional update: a nil job with nil error means the race was lost.
type JobStore interface {
	Get(ctx context.Context, id types.ID) (*job.Job, error)
	Reserve(ctx context.Context, id, techID types.ID, expiresAt time.Time) (*job.Job, error)
	Decline(ctx context.Context, id, techID types.ID) (*job.Job, error)
	Accept(ctx context.Context, id, techID types.ID) (*job.Job, error)
	AcceptStandby(ctx context.Context, id, techID types.ID) (*job.Job, error)
	MarkUnassigned(ctx context.Context, id types.ID) (bool, error)
	ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]job.Job, error)
	AppendEvent(ctx context.Context, e *job.Event) error
}

// Ranker produces the candidate pool for one assignment pass.
type Ranker interface {
	Rank(ctx context.Context, state string, loc *types.Point, exclude map[types.ID]struct{}) ([]matching.Candidate, error)
}

type Engine struct {
	store     JobStore
	ranker    Ranker
	notifier  Notifier
	scheduler Scheduler
	logger    *slog.Logger

	reserveWindow time.Duration
	sweepInterval time.Duration
}

func NewEngine(store JobStore, ranker Ranker, notifier Notifier, scheduler Scheduler, cfg config.AssignConfig, logger *slog.Logger) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:         store,
		ranker:        ranker,
		notifier:      notifier,
		scheduler:     scheduler,
		logger:        logger,
		reserveWindow: cfg.ReserveWindow,
		sweepInterval: cfg.SweepInterval,
	}
}

// Assign runs one matching round: it ranks the eligible candidates, walks
// them nearest-first, and reserves the job for the first one the conditional
// update accepts. A nil candidate with nil error means no assignment was
// possible, which is an expected outcome and never an error. Losing a reservation race
// advances to the next candidate rather than failing the round.
func (e *Engine) Assign(ctx context.Context, jobID types.ID) (*matching.Candidate, error) {
	j, err := e.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Reservable(j.Status) {
		return nil, nil
	}

	pool, err := e.ranker.Rank(ctx, j.State, j.Location, exclusions(j))
	if err != nil {
		return nil, err
	}

	idx := 0
	for {
		// Exclusion sets may have grown since the pool was ranked; skip on
		// the freshest job state rather than the snapshot.
		for idx < len(pool) && excluded(j, pool[idx].TechID) {
			idx++
		}
		if idx >= len(pool) {
			return nil, e.markExhausted(ctx, j)
		}
		cand := pool[idx]
		idx++

		reserved, err := e.store.Reserve(ctx, j.ID, cand.TechID, time.Now().Add(e.reserveWindow))
		if err != nil {
			return nil, err
		}
		if reserved != nil {
			e.offerMade(ctx, j.Status, reserved, cand)
			return &cand, nil
		}

		// Reservation lost: either the candidate became ineligible or another
		// caller moved the job. Re-read and retry with the next candidate.
		j, err = e.store.Get(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if !job.Reservable(j.Status) {
			return nil, nil
		}
	}
}

func (e *Engine) offerMade(ctx context.Context, from job.Status, reserved *job.Job, cand matching.Candidate) {
	_ = e.store.AppendEvent(ctx, &job.Event{
		JobID:      reserved.ID,
		FromStatus: from,
		ToStatus:   job.StatusPendingAccept,
		ActorType:  "system",
		CreatedAt:  time.Now(),
	})
	e.logger.Info("job offered",
		slog.String("job_id", string(reserved.ID)),
		slog.String("tech_id", string(cand.TechID)),
		slog.Float64("distance_m", cand.DistanceMeters),
	)
	e.notifier.Assigned(ctx, reserved, cand.TechID)

	jobID, techID := reserved.ID, cand.TechID
	e.scheduler.AfterFunc(e.reserveWindow, func() {
		e.expireOffer(jobID, techID)
	})
}

func (e *Engine) markExhausted(ctx context.Context, j *job.Job) error {
	ok, err := e.store.MarkUnassigned(ctx, j.ID)
	if err != nil {
		return err
	}
	if !ok {
		// Someone else reserved or cancelled the job meanwhile; nothing to report.
		return nil
	}
	_ = e.store.AppendEvent(ctx, &job.Event{
		JobID:      j.ID,
		FromStatus: j.Status,
		ToStatus:   job.StatusPendingAssignment,
		ActorType:  "system",
		CreatedAt:  time.Now(),
	})
	e.logger.Info("no candidates remain", slog.String("job_id", string(j.ID)))
	e.notifier.Exhausted(ctx, j)
	return nil
}

// expireOffer is the deferred expiry handler. It re-validates through the
// conditional decline (the job must still be pending_accept and still
// offered to this technician), so a late timer never regresses a job that
// already progressed.
func (e *Engine) expireOffer(jobID, techID types.ID) {
	ctx := context.Background()
	declined, err := e.store.Decline(ctx, jobID, techID)
	if err != nil {
		e.logger.Error("expire offer",
			slog.String("job_id", string(jobID)), slog.String("error", err.Error()))
		return
	}
	if declined == nil {
		return
	}
	_ = e.store.AppendEvent(ctx, &job.Event{
		JobID:      jobID,
		FromStatus: job.StatusPendingAccept,
		ToStatus:   job.StatusPendingAssignment,
		ActorType:  "system",
		ActorID:    &techID,
		CreatedAt:  time.Now(),
	})
	e.logger.Info("offer expired",
		slog.String("job_id", string(jobID)), slog.String("tech_id", string(techID)))

	if _, err := e.Assign(ctx, jobID); err != nil {
		e.logger.Error("reassign after expiry",
			slog.String("job_id", string(jobID)), slog.String("error", err.Error()))
	}
}

// RunExpirySweeper re-drives offers whose window lapsed without a timer
// firing, e.g. after a restart. Harmless alongside live timers: the
// conditional decline makes double expiry a no-op.
func (e *Engine) RunExpirySweeper(ctx context.Context) {
	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := e.store.ListExpiredOffers(ctx, time.Now(), 100)
			if err != nil {
				e.logger.Error("list expired offers", slog.String("error", err.Error()))
				continue
			}
			for _, j := range expired {
				if j.AssignedTechID == nil {
					continue
				}
				e.expireOffer(j.ID, *j.AssignedTechID)
			}
		}
	}
}

// assignAsync runs a follow-up round without holding the caller's request.
func (e *Engine) assignAsync(jobID types.ID) {
	go func() {
		if _, err := e.Assign(context.Background(), jobID); err != nil {
			e.logger.Error("async assignment round",
				slog.String("job_id", string(jobID)), slog.String("error", err.Error()))
		}
	}()
}

func exclusions(j *job.Job) map[types.ID]struct{} {
	out := make(map[types.ID]struct{}, len(j.DeclinedTechs)+len(j.AssignedTechIDs))
	for _, id := range j.DeclinedTechs {
		out[id] = struct{}{}
	}
	for _, id := range j.AssignedTechIDs {
		out[id] = struct{}{}
	}
	return out
}

func excluded(j *job.Job, techID types.ID) bool {
	return j.HasDeclined(techID) || j.HasAccepted(techID)
}
