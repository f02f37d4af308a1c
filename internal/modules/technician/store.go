// README: Technician store backed by PostgreSQL.
package technician

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wireconnect/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, t *Technician) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO technicians (id, name, email, phone, password_hash, state, city, skills, kyc_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(t.ID), t.Name, t.Email, t.Phone, t.PasswordHash,
		t.State, t.City, t.Skills, t.KYCStatus, t.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create technician: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Technician, error) {
	return s.scanOne(s.db.QueryRow(ctx, `
		SELECT id, name, email, phone, password_hash, state, city, skills, kyc_status, created_at
		FROM technicians WHERE id = $1`, string(id)))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Technician, error) {
	return s.scanOne(s.db.QueryRow(ctx, `
		SELECT id, name, email, phone, password_hash, state, city, skills, kyc_status, created_at
		FROM technicians WHERE email = $1`, email))
}

func (s *Store) SetKYCStatus(ctx context.Context, id types.ID, status string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE technicians SET kyc_status = $2 WHERE id = $1`, string(id), status)
	if err != nil {
		return fmt.Errorf("set kyc status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanOne(row pgx.Row) (*Technician, error) {
	var t Technician
	var id string
	err := row.Scan(&id, &t.Name, &t.Email, &t.Phone, &t.PasswordHash,
		&t.State, &t.City, &t.Skills, &t.KYCStatus, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan technician: %w", err)
	}
	t.ID = types.ID(id)
	return &t, nil
}
