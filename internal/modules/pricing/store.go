// README: Rate card store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoRate = errors.New("no rate card for category")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// GetRate prefers the state-specific row and falls back to the "*" row.
func (s *Store) GetRate(ctx context.Context, category, state string) (Rate, error) {
	row := s.db.QueryRow(ctx, `
		SELECT category, state, base_fare, callout_fee, currency
		FROM rate_cards
		WHERE category = $1 AND state IN ($2, '*')
		ORDER BY (state = $2) DESC
		LIMIT 1`,
		category, state,
	)
	var r Rate
	err := row.Scan(&r.Category, &r.State, &r.BaseFare, &r.CalloutFee, &r.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrNoRate
	}
	if err != nil {
		return Rate{}, fmt.Errorf("get rate: %w", err)
	}
	return r, nil
}
