// README: Job store backed by PostgreSQL; all assignment mutations are conditional updates.
package job

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wireconnect/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const jobColumns = `
	id, client_id, category, description, state, city, lat, lng,
	price_amount, price_currency, workers_needed, status,
	assigned_tech_id, assigned_tech_ids, declined_techs, notified_techs, seen_by_techs,
	assigned_at, expires_at, accepted_at, created_at`

func (s *Store) Create(ctx context.Context, j *Job) error {
	var lat, lng *float64
	if j.Location != nil {
		lat, lng = &j.Location.Lat, &j.Location.Lng
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO jobs (
			id, client_id, category, description, state, city, lat, lng,
			price_amount, price_currency, workers_needed, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13
		)`,
		string(j.ID),
		string(j.ClientID),
		j.Category,
		j.Description,
		j.State,
		j.City,
		lat, lng,
		j.Price.Amount,
		j.Price.Currency,
		j.WorkersNeeded,
		string(j.Status),
		j.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Job, error) {
	row := s.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, string(id))
	return scanJob(row)
}

// Reserve atomically claims the job for one technician: it succeeds only
// while the job is still in a reservable state and the technician has neither
// declined nor already accepted. A nil job with nil error means the
// reservation was lost to a concurrent update.
func (s *Store) Reserve(ctx context.Context, id, techID types.ID, expiresAt time.Time) (*Job, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE jobs SET
			status = 'pending_accept',
			assigned_tech_id = $2,
			assigned_at = NOW(),
			expires_at = $3,
			notified_techs = CASE WHEN $2 = ANY(notified_techs) THEN notified_techs
				ELSE array_append(notified_techs, $2) END
		WHERE id = $1
		  AND status = ANY($4)
		  AND NOT ($2 = ANY(declined_techs))
		  AND NOT ($2 = ANY(assigned_tech_ids))
		RETURNING `+jobColumns,
		string(id), string(techID), expiresAt, statusStrings(reservableStatuses),
	)
	return scanJobMaybe(row)
}

// Decline releases the outstanding offer and blacklists the technician for
// this job. Guarded on the offer still belonging to the same technician, so
// a decline and a timeout racing for one offer record exactly one transition.
func (s *Store) Decline(ctx context.Context, id, techID types.ID) (*Job, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE jobs SET
			status = 'pending_assignment',
			assigned_tech_id = NULL,
			assigned_at = NULL,
			expires_at = NULL,
			declined_techs = CASE WHEN $2 = ANY(declined_techs) THEN declined_techs
				ELSE array_append(declined_techs, $2) END
		WHERE id = $1 AND status = 'pending_accept' AND assigned_tech_id = $2
		RETURNING `+jobColumns,
		string(id), string(techID),
	)
	return scanJobMaybe(row)
}

// Accept consumes the outstanding offer: the technician joins the accepted
// set and the job finalizes to accepted or drops to partial in the same
// statement, so the count check and the append cannot interleave.
func (s *Store) Accept(ctx context.Context, id, techID types.ID) (*Job, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE jobs SET
			assigned_tech_ids = array_append(assigned_tech_ids, $2),
			assigned_tech_id = NULL,
			assigned_at = NULL,
			expires_at = NULL,
			status = CASE WHEN cardinality(assigned_tech_ids) + 1 >= workers_needed
				THEN 'accepted' ELSE 'partial' END,
			accepted_at = CASE WHEN cardinality(assigned_tech_ids) + 1 >= workers_needed
				THEN NOW() ELSE accepted_at END
		WHERE id = $1 AND status = 'pending_accept' AND assigned_tech_id = $2
		  AND NOT ($2 = ANY(assigned_tech_ids))
		RETURNING `+jobColumns,
		string(id), string(techID),
	)
	return scanJobMaybe(row)
}

// AcceptStandby records an acceptance from a previously-notified technician
// while a partial multi-worker job has no outstanding offer.
func (s *Store) AcceptStandby(ctx context.Context, id, techID types.ID) (*Job, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE jobs SET
			assigned_tech_ids = array_append(assigned_tech_ids, $2),
			status = CASE WHEN cardinality(assigned_tech_ids) + 1 >= workers_needed
				THEN 'accepted' ELSE 'partial' END,
			accepted_at = CASE WHEN cardinality(assigned_tech_ids) + 1 >= workers_needed
				THEN NOW() ELSE accepted_at END
		WHERE id = $1 AND status = 'partial'
		  AND $2 = ANY(notified_techs)
		  AND NOT ($2 = ANY(declined_techs))
		  AND NOT ($2 = ANY(assigned_tech_ids))
		  AND cardinality(assigned_tech_ids) < workers_needed
		RETURNING `+jobColumns,
		string(id), string(techID),
	)
	return scanJobMaybe(row)
}

// MarkUnassigned parks the job until a new trigger re-attempts assignment.
// No-op when a concurrent caller reserved or cancelled the job first.
func (s *Store) MarkUnassigned(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE jobs SET
			status = 'pending_assignment',
			assigned_tech_id = NULL,
			assigned_at = NULL,
			expires_at = NULL
		WHERE id = $1 AND status = ANY($2)`,
		string(id), statusStrings(reservableStatuses),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Cancel(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE jobs SET
			status = 'cancelled',
			assigned_tech_id = NULL,
			assigned_at = NULL,
			expires_at = NULL
		WHERE id = $1 AND status = ANY($2)`,
		string(id), statusStrings([]Status{
			StatusCreated, StatusPendingAssignment, StatusPendingAccept, StatusPartial,
		}),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkSeen acknowledges an offer; only the offeree or a previously-notified
// technician can acknowledge.
func (s *Store) MarkSeen(ctx context.Context, id, techID types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE jobs SET
			seen_by_techs = CASE WHEN $2 = ANY(seen_by_techs) THEN seen_by_techs
				ELSE array_append(seen_by_techs, $2) END
		WHERE id = $1 AND (assigned_tech_id = $2 OR $2 = ANY(notified_techs))`,
		string(id), string(techID),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListExpiredOffers returns jobs whose offer window has lapsed; the sweeper
// re-drives each through the decline transition.
func (s *Store) ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]Job, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE status = 'pending_accept' AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (s *Store) ListByStatus(ctx context.Context, status Status, limit int) ([]Job, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		string(status), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (s *Store) ListByClient(ctx context.Context, clientID types.ID, limit int) ([]Job, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		string(clientID), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO job_state_events (
			job_id, from_status, to_status, actor_type, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.JobID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		idPtrToString(e.ActorID),
		e.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var j Job
	var lat, lng *float64
	var assignedTech *string
	var assigned, declined, notified, seen []string
	var assignedAt, expiresAt, acceptedAt *time.Time

	err := row.Scan(
		&j.ID, &j.ClientID, &j.Category, &j.Description, &j.State, &j.City, &lat, &lng,
		&j.Price.Amount, &j.Price.Currency, &j.WorkersNeeded, &j.Status,
		&assignedTech, &assigned, &declined, &notified, &seen,
		&assignedAt, &expiresAt, &acceptedAt, &j.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if lat != nil && lng != nil {
		j.Location = &types.Point{Lat: *lat, Lng: *lng}
	}
	if assignedTech != nil {
		id := types.ID(*assignedTech)
		j.AssignedTechID = &id
	}
	j.AssignedTechIDs = toIDs(assigned)
	j.DeclinedTechs = toIDs(declined)
	j.NotifiedTechs = toIDs(notified)
	j.SeenByTechs = toIDs(seen)
	j.AssignedAt = assignedAt
	j.ExpiresAt = expiresAt
	j.AcceptedAt = acceptedAt
	return &j, nil
}

// scanJobMaybe is scanJob for conditional updates, where zero rows means the
// race was lost rather than the job being missing.
func scanJobMaybe(row rowScanner) (*Job, error) {
	j, err := scanJob(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return j, err
}

func collectJobs(rows pgx.Rows) ([]Job, error) {
	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func toIDs(ss []string) []types.ID {
	if len(ss) == 0 {
		return nil
	}
	ids := make([]types.ID, len(ss))
	for i, s := range ss {
		ids[i] = types.ID(s)
	}
	return ids
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func idPtrToString(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
