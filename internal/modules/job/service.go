// README: Booking service: job creation, status lookup, cancellation.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wireconnect/internal/types"
)

var (
	ErrNotFound   = errors.New("job not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("job state conflict")
)

// Geocoder resolves a free-text address to coordinates. Best effort; a nil
// implementation or an error leaves the job without coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*types.Point, error)
}

// Quoter prices a booking that arrives without an explicit price.
type Quoter interface {
	Quote(ctx context.Context, category, state string) (types.Money, error)
}

type Service struct {
	store    *Store
	geocoder Geocoder
	quoter   Quoter
	logger   *slog.Logger
}

func NewService(store *Store, geocoder Geocoder, quoter Quoter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, geocoder: geocoder, quoter: quoter, logger: logger}
}

type CreateCommand struct {
	ClientID      types.ID
	Category      string
	Description   string
	State         string
	City          string
	Address       string
	Location      *types.Point
	Price         types.Money
	WorkersNeeded int
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Job, error) {
	if cmd.ClientID == "" || cmd.Category == "" || cmd.State == "" {
		return nil, ErrBadRequest
	}
	workers := cmd.WorkersNeeded
	if workers == 0 {
		workers = 1
	}
	if workers < 1 {
		return nil, ErrBadRequest
	}

	loc := cmd.Location
	if loc == nil && cmd.Address != "" && s.geocoder != nil {
		p, err := s.geocoder.Geocode(ctx, cmd.Address)
		if err != nil {
			s.logger.Warn("geocode failed, booking continues without coordinates",
				slog.String("address", cmd.Address), slog.String("error", err.Error()))
		} else {
			loc = p
		}
	}

	price := cmd.Price
	if price.Amount == 0 && s.quoter != nil {
		if q, err := s.quoter.Quote(ctx, cmd.Category, cmd.State); err == nil {
			price = q
		}
	}

	now := time.Now()
	j := &Job{
		ID:            types.ID(uuid.NewString()),
		ClientID:      cmd.ClientID,
		Category:      cmd.Category,
		Description:   cmd.Description,
		State:         cmd.State,
		City:          cmd.City,
		Location:      loc,
		Price:         price,
		WorkersNeeded: workers,
		Status:        StatusCreated,
		CreatedAt:     now,
	}
	if err := s.store.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	_ = s.store.AppendEvent(ctx, &Event{
		JobID:      j.ID,
		FromStatus: StatusNone,
		ToStatus:   StatusCreated,
		ActorType:  "client",
		ActorID:    &cmd.ClientID,
		CreatedAt:  now,
	})
	return j, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Job, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByClient(ctx context.Context, clientID types.ID, limit int) ([]Job, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListByClient(ctx, clientID, limit)
}

func (s *Service) ListByStatus(ctx context.Context, status Status, limit int) ([]Job, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListByStatus(ctx, status, limit)
}

func (s *Service) Cancel(ctx context.Context, id types.ID, actorID types.ID) error {
	j, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.store.Cancel(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		JobID:      id,
		FromStatus: j.Status,
		ToStatus:   StatusCancelled,
		ActorType:  "client",
		ActorID:    &actorID,
		CreatedAt:  time.Now(),
	})
	return nil
}

func (s *Service) MarkSeen(ctx context.Context, id, techID types.ID) error {
	ok, err := s.store.MarkSeen(ctx, id, techID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
