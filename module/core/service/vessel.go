package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/cache"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/database"
)

type vesselTracker interface {
	Untrack(vesselID string)
}

type VesselService struct {
	repo    database.PositionRepository
	cache   cache.PositionCache
	tracker vesselTracker
}

func NewVesselService(repo database.PositionRepository, cache cache.PositionCache, tracker vesselTracker) *VesselService {
	return &VesselService{repo: repo, cache: cache, tracker: tracker}
}

// SaveSample stores the sample and refreshes the live position. A cache
// failure is logged; the stored sample is authoritative. The cache keeps its
// newer position when sample is out of order.
func (s *VesselService) SaveSample(ctx context.Context, sample *domain.VesselSample) error {
	if err := s.repo.Insert(ctx, sample); err != nil {
		return err
	}
	err := s.cache.Set(ctx, sample)
	if errors.Is(err, domain.ErrStaleSample) {
		return nil
	}
	if err != nil {
		log.Printf("cache position vessel=%s: %v", sample.VesselID, err)
	}
	return nil
}

func (s *VesselService) GetLatest(ctx context.Context, vesselID string) (*domain.VesselSample, error) {
	sample, err := s.cache.Get(ctx, vesselID)
	if err == nil {
		return sample, nil
	}
	return s.repo.GetLatest(ctx, vesselID)
}

func (s *VesselService) GetLive(ctx context.Context) ([]domain.VesselSample, error) {
	return s.cache.Live(ctx)
}

func (s *VesselService) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.VesselSample, error) {
	return s.repo.GetHistory(ctx, query)
}

func (s *VesselService) GetAllVessels(ctx context.Context) ([]domain.Vessel, error) {
	return s.repo.GetAllVessels(ctx)
}

// MonthlyStats counts distinct reporting vessels for every month of year.
// Months without samples are reported with zero vessels.
func (s *VesselService) MonthlyStats(ctx context.Context, year int) ([]domain.MonthlyCount, error) {
	counts, err := s.repo.CountVesselsByMonth(ctx, year)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MonthlyCount, 12)
	for i := range out {
		m := time.Month(i + 1)
		out[i] = domain.MonthlyCount{Month: int(m), Name: m.String()}
	}
	for _, c := range counts {
		if c.Month >= 1 && c.Month <= 12 {
			out[c.Month-1].Vessels = c.Vessels
		}
	}
	return out, nil
}

// Untrack drops the vessel's geofence state and live position. Stored history
// is kept.
func (s *VesselService) Untrack(ctx context.Context, vesselID string) error {
	s.tracker.Untrack(vesselID)
	return s.cache.Delete(ctx, vesselID)
}
