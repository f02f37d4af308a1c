// README: Technician registration, login and directory lookups.
package technician

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wireconnect/internal/types"
)

var (
	ErrNotFound       = errors.New("technician not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrBadRequest     = errors.New("bad request")
)

type directory interface {
	Create(ctx context.Context, t *Technician) error
	Get(ctx context.Context, id types.ID) (*Technician, error)
	GetByEmail(ctx context.Context, email string) (*Technician, error)
	SetKYCStatus(ctx context.Context, id types.ID, status string) error
}

type Service struct {
	store directory
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type RegisterCommand struct {
	Name     string
	Email    string
	Phone    string
	Password string
	State    string
	City     string
	Skills   []string
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Technician, error) {
	cmd.Email = strings.ToLower(strings.TrimSpace(cmd.Email))
	if cmd.Name == "" || cmd.Email == "" || len(cmd.Password) < 8 || cmd.State == "" {
		return nil, ErrBadRequest
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	t := &Technician{
		ID:           types.ID(uuid.NewString()),
		Name:         cmd.Name,
		Email:        cmd.Email,
		Phone:        cmd.Phone,
		PasswordHash: string(hash),
		State:        strings.ToLower(cmd.State),
		City:         cmd.City,
		Skills:       cmd.Skills,
		KYCStatus:    KYCUnverified,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Login returns the account on a matching email/password pair. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Technician, error) {
	t, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Technician, error) {
	return s.store.Get(ctx, id)
}

// SetKYCStatus mirrors the review outcome onto the account.
func (s *Service) SetKYCStatus(ctx context.Context, id types.ID, status string) error {
	switch status {
	case KYCUnverified, KYCPending, KYCApproved, KYCRejected:
		return s.store.SetKYCStatus(ctx, id, status)
	default:
		return ErrBadRequest
	}
}
