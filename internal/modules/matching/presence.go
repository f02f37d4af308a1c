// README: Technician presence backed by Redis sets and GEO indexes, keyed per state.
package matching

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"wireconnect/internal/types"
)

const (
	onlineKeyPrefix = "presence:online:%s"
	geoKeyPrefix    = "presence:geo:%s"
)

type Presence struct {
	redis *redis.Client
}

func NewPresence(rc *redis.Client) *Presence {
	return &Presence{redis: rc}
}

// SetOnline marks a technician available in a state. Position is optional:
// a technician online without coordinates stays in the online set but has no
// GEO entry, so ranking sees +Inf for them.
func (p *Presence) SetOnline(ctx context.Context, techID types.ID, state string, pos *types.Point) error {
	pipe := p.redis.Pipeline()
	pipe.SAdd(ctx, onlineKey(state), string(techID))
	if pos != nil {
		pipe.GeoAdd(ctx, geoKey(state), &redis.GeoLocation{
			Name:      string(techID),
			Longitude: pos.Lng,
			Latitude:  pos.Lat,
		})
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (p *Presence) SetOffline(ctx context.Context, techID types.ID, state string) error {
	pipe := p.redis.Pipeline()
	pipe.SRem(ctx, onlineKey(state), string(techID))
	pipe.ZRem(ctx, geoKey(state), string(techID))
	_, err := pipe.Exec(ctx)
	return err
}

// UpdatePosition refreshes a technician's coordinates without touching the
// online flag.
func (p *Presence) UpdatePosition(ctx context.Context, techID types.ID, state string, pos types.Point) error {
	return p.redis.GeoAdd(ctx, geoKey(state), &redis.GeoLocation{
		Name:      string(techID),
		Longitude: pos.Lng,
		Latitude:  pos.Lat,
	}).Err()
}

// OnlineTechs lists every technician currently online in a state.
func (p *Presence) OnlineTechs(ctx context.Context, state string) ([]types.ID, error) {
	members, err := p.redis.SMembers(ctx, onlineKey(state)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(members))
	for i, m := range members {
		ids[i] = types.ID(m)
	}
	return ids, nil
}

// Positions resolves coordinates for the given technicians. Entries missing
// from the GEO index come back nil.
func (p *Presence) Positions(ctx context.Context, state string, ids []types.ID) ([]*types.Point, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	members := make([]string, len(ids))
	for i, id := range ids {
		members[i] = string(id)
	}
	res, err := p.redis.GeoPos(ctx, geoKey(state), members...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*types.Point, len(ids))
	for i, gp := range res {
		if gp == nil {
			continue
		}
		out[i] = &types.Point{Lat: gp.Latitude, Lng: gp.Longitude}
	}
	return out, nil
}

func onlineKey(state string) string {
	return fmt.Sprintf(onlineKeyPrefix, state)
}

func geoKey(state string) string {
	return fmt.Sprintf(geoKeyPrefix, state)
}
