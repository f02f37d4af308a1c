// README: KYC submission and admin review.
package kyc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wireconnect/internal/types"
)

var (
	ErrNotFound   = errors.New("kyc document not found")
	ErrBadRequest = errors.New("bad request")
	// ErrAlreadyReviewed means another admin's verdict landed first.
	ErrAlreadyReviewed = errors.New("document already reviewed")
)

var documentKinds = map[string]struct{}{
	"national_id":   {},
	"passport":      {},
	"trade_license": {},
}

type documents interface {
	Create(ctx context.Context, d *Document) error
	Get(ctx context.Context, id types.ID) (*Document, error)
	Review(ctx context.Context, id types.ID, verdict Status, note string, at time.Time) (*Document, error)
	ListPending(ctx context.Context, limit int) ([]Document, error)
	ListByTechnician(ctx context.Context, techID types.ID) ([]Document, error)
}

// accountMirror pushes the review outcome onto the technician account.
type accountMirror interface {
	SetKYCStatus(ctx context.Context, id types.ID, status string) error
}

type Service struct {
	store    documents
	accounts accountMirror
	logger   *slog.Logger
}

func NewService(store *Store, accounts accountMirror, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, accounts: accounts, logger: logger}
}

func (s *Service) Submit(ctx context.Context, techID types.ID, kind, fileRef string) (*Document, error) {
	if _, ok := documentKinds[kind]; !ok || fileRef == "" {
		return nil, ErrBadRequest
	}
	d := &Document{
		ID:           types.ID(uuid.NewString()),
		TechnicianID: techID,
		Kind:         kind,
		FileRef:      fileRef,
		Status:       StatusPending,
		SubmittedAt:  time.Now(),
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	if err := s.accounts.SetKYCStatus(ctx, techID, string(StatusPending)); err != nil {
		s.logger.Error("mirror kyc status",
			slog.String("tech_id", string(techID)), slog.String("error", err.Error()))
	}
	return d, nil
}

// Review applies an admin verdict. First verdict wins; a second review of the
// same document returns ErrAlreadyReviewed.
func (s *Service) Review(ctx context.Context, docID types.ID, verdict Status, note string) (*Document, error) {
	if !CanTransition(StatusPending, verdict) {
		return nil, ErrBadRequest
	}
	updated, err := s.store.Review(ctx, docID, verdict, note, time.Now())
	if err != nil {
		return nil, err
	}
	if updated == nil {
		if _, err := s.store.Get(ctx, docID); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyReviewed
	}

	if err := s.accounts.SetKYCStatus(ctx, updated.TechnicianID, string(verdict)); err != nil {
		s.logger.Error("mirror kyc status",
			slog.String("tech_id", string(updated.TechnicianID)), slog.String("error", err.Error()))
	}
	s.logger.Info("kyc reviewed",
		slog.String("doc_id", string(docID)),
		slog.String("verdict", string(verdict)),
	)
	return updated, nil
}

func (s *Service) ListPending(ctx context.Context, limit int) ([]Document, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListPending(ctx, limit)
}

func (s *Service) ListByTechnician(ctx context.Context, techID types.ID) ([]Document, error) {
	return s.store.ListByTechnician(ctx, techID)
}
