package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/cache"
)

var _ cache.PositionCache = (*PositionCache)(nil)

const trackedSetKey = "vessels:tracked"

type PositionCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewPositionCache stores positions with the given ttl; zero keeps them until
// the vessel is untracked.
func NewPositionCache(rdb *goredis.Client, ttl time.Duration) *PositionCache {
	return &PositionCache{rdb: rdb, ttl: ttl}
}

func positionKey(vesselID string) string {
	return fmt.Sprintf("vessel:%s:position", vesselID)
}

const maxSetAttempts = 3

// Set replaces the live position only when s is newer than the cached one.
// An older or equal sample returns domain.ErrStaleSample.
func (c *PositionCache) Set(ctx context.Context, s *domain.VesselSample) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}

	key := positionKey(s.VesselID)
	for attempt := 0; attempt < maxSetAttempts; attempt++ {
		err = c.rdb.Watch(ctx, func(tx *goredis.Tx) error {
			prev, err := tx.Get(ctx, key).Bytes()
			switch {
			case errors.Is(err, goredis.Nil):
			case err != nil:
				return err
			default:
				var cur domain.VesselSample
				if json.Unmarshal(prev, &cur) == nil && !s.Timestamp.After(cur.Timestamp) {
					return fmt.Errorf("vessel %s: %w", s.VesselID, domain.ErrStaleSample)
				}
			}

			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				pipe.Set(ctx, key, body, c.ttl)
				pipe.SAdd(ctx, trackedSetKey, s.VesselID)
				return nil
			})
			return err
		}, key)
		if !errors.Is(err, goredis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (c *PositionCache) Get(ctx context.Context, vesselID string) (*domain.VesselSample, error) {
	body, err := c.rdb.Get(ctx, positionKey(vesselID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("vessel %s: %w", vesselID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var s domain.VesselSample
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("unmarshal sample: %w", err)
	}
	return &s, nil
}

func (c *PositionCache) Delete(ctx context.Context, vesselID string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, positionKey(vesselID))
		pipe.SRem(ctx, trackedSetKey, vesselID)
		return nil
	})
	return err
}

// Live returns the cached sample of every tracked vessel, ordered by vessel id.
// Vessels whose entry expired are skipped.
func (c *PositionCache) Live(ctx context.Context) ([]domain.VesselSample, error) {
	ids, err := c.rdb.SMembers(ctx, trackedSetKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = positionKey(id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	results := make([]domain.VesselSample, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var s domain.VesselSample
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("vessel %s: unmarshal sample: %w", ids[i], err)
		}
		results = append(results, s)
	}
	return results, nil
}
