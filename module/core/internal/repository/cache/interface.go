package cache

import (
	"context"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

// PositionCache keeps the latest sample of each tracked vessel for the live map.
type PositionCache interface {
	Set(ctx context.Context, s *domain.VesselSample) error
	Get(ctx context.Context, vesselID string) (*domain.VesselSample, error)
	Delete(ctx context.Context, vesselID string) error
	Live(ctx context.Context) ([]domain.VesselSample, error)
}
