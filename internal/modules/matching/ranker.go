// README: Candidate ranker: online pool -> exclusion filter -> distance sort.
package matching

import (
	"context"
	"math"

	"wireconnect/internal/types"
)

// presenceReader is the slice of Presence the ranker needs; tests swap in an
// in-memory implementation.
type presenceReader interface {
	OnlineTechs(ctx context.Context, state string) ([]types.ID, error)
	Positions(ctx context.Context, state string, ids []types.ID) ([]*types.Point, error)
}

type Ranker struct {
	presence presenceReader
	// maxDistanceMeters caps how far away a candidate may be; zero means no cap.
	maxDistanceMeters float64
}

func NewRanker(presence *Presence, radiusKm float64) *Ranker {
	return newRanker(presence, radiusKm)
}

func newRanker(presence presenceReader, radiusKm float64) *Ranker {
	return &Ranker{presence: presence, maxDistanceMeters: radiusKm * 1000}
}

// Rank produces the distance-sorted candidate pool for a job location,
// excluding the given technicians and anyone without usable coordinates or
// beyond the radius cap. Nearest first.
func (r *Ranker) Rank(ctx context.Context, state string, loc *types.Point, exclude map[types.ID]struct{}) ([]Candidate, error) {
	online, err := r.presence.OnlineTechs(ctx, state)
	if err != nil {
		return nil, err
	}

	pool := make([]types.ID, 0, len(online))
	for _, id := range online {
		if _, skip := exclude[id]; skip {
			continue
		}
		pool = append(pool, id)
	}
	if len(pool) == 0 {
		return nil, nil
	}

	positions, err := r.presence.Positions(ctx, state, pool)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(pool))
	for i, id := range pool {
		d := haversineMeters(loc, positions[i])
		if math.IsInf(d, 1) {
			continue
		}
		if r.maxDistanceMeters > 0 && d > r.maxDistanceMeters {
			continue
		}
		candidates = append(candidates, Candidate{
			TechID:         id,
			Position:       positions[i],
			DistanceMeters: d,
		})
	}

	sortByDistance(candidates, func(c Candidate) float64 { return c.DistanceMeters })
	return candidates, nil
}
