// README: KYC document store backed by PostgreSQL.
package kyc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wireconnect/internal/types"
)

const documentColumns = `id, technician_id, kind, file_ref, status, review_note, submitted_at, reviewed_at`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, d *Document) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO kyc_documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(d.ID), string(d.TechnicianID), d.Kind, d.FileRef,
		string(d.Status), d.ReviewNote, d.SubmittedAt, d.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("create kyc document: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Document, error) {
	d, err := scanDocument(s.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM kyc_documents WHERE id = $1`, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

// Review moves a pending document to its verdict. The status guard in the
// WHERE clause makes concurrent reviews first-wins.
func (s *Store) Review(ctx context.Context, id types.ID, verdict Status, note string, at time.Time) (*Document, error) {
	d, err := scanDocument(s.db.QueryRow(ctx, `
		UPDATE kyc_documents
		SET status = $2, review_note = $3, reviewed_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING `+documentColumns,
		string(id), string(verdict), note, at,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (s *Store) ListPending(ctx context.Context, limit int) ([]Document, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+documentColumns+` FROM kyc_documents
		WHERE status = 'pending'
		ORDER BY submitted_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *Store) ListByTechnician(ctx context.Context, techID types.ID) ([]Document, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+documentColumns+` FROM kyc_documents
		WHERE technician_id = $1
		ORDER BY submitted_at DESC`, string(techID))
	if err != nil {
		return nil, fmt.Errorf("list by technician: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	var id, techID, status string
	err := row.Scan(&id, &techID, &d.Kind, &d.FileRef, &status,
		&d.ReviewNote, &d.SubmittedAt, &d.ReviewedAt)
	if err != nil {
		return nil, err
	}
	d.ID = types.ID(id)
	d.TechnicianID = types.ID(techID)
	d.Status = Status(status)
	return &d, nil
}
