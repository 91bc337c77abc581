package database

import (
	"context"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

type PositionRepository interface {
	Insert(ctx context.Context, s *domain.VesselSample) error
	GetLatest(ctx context.Context, vesselID string) (*domain.VesselSample, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.VesselSample, error)
	GetAllVessels(ctx context.Context) ([]domain.Vessel, error)
	// CountVesselsByMonth returns only the months of year that have samples.
	CountVesselsByMonth(ctx context.Context, year int) ([]domain.MonthlyCount, error)
}

type EventRepository interface {
	Insert(ctx context.Context, ev *domain.GeofenceEvent) error
	Find(ctx context.Context, query *domain.EventQuery) ([]domain.GeofenceEvent, error)
}

// GeofenceRepository keeps a snapshot of the registry so it survives restarts.
type GeofenceRepository interface {
	Upsert(ctx context.Context, gf *domain.Geofence) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Geofence, error)
	// SeededIDs lists every seed id ever applied, including ones deleted since.
	SeededIDs(ctx context.Context) (map[string]struct{}, error)
	MarkSeeded(ctx context.Context, id string) error
}
