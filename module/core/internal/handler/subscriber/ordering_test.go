package subscriber

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/cache/redis"
	"github.com/nandanugg/vessel-geofence/module/core/service"
)

type countingPositionRepo struct {
	mu      sync.Mutex
	inserts []int64
}

func (r *countingPositionRepo) Insert(_ context.Context, s *domain.VesselSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts = append(r.inserts, s.Timestamp.Unix())
	return nil
}

func (r *countingPositionRepo) GetLatest(_ context.Context, vesselID string) (*domain.VesselSample, error) {
	return nil, domain.ErrNotFound
}

func (r *countingPositionRepo) GetHistory(_ context.Context, _ *domain.HistoryQuery) ([]domain.VesselSample, error) {
	return nil, nil
}

func (r *countingPositionRepo) GetAllVessels(_ context.Context) ([]domain.Vessel, error) {
	return nil, nil
}

func (r *countingPositionRepo) CountVesselsByMonth(_ context.Context, _ int) ([]domain.MonthlyCount, error) {
	return nil, nil
}

type discardSink struct{}

func (discardSink) Publish(_ context.Context, _ *domain.GeofenceEvent) {}

func TestHandleMessage_OutOfOrderSamplesDropped(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &countingPositionRepo{}
	registry := service.NewGeofenceRegistry()
	tracker := service.NewTracker(registry, discardSink{})
	vesselSvc := service.NewVesselService(repo, redis.NewPositionCache(rdb, 0), tracker)
	sub := &PositionSubscriber{vesselSvc: vesselSvc, tracker: tracker}

	feed := []positionMessage{
		{VesselID: "9321483", Latitude: 1.5, Longitude: 103, Timestamp: 2000},
		{VesselID: "9321483", Latitude: 1.0, Longitude: 103, Timestamp: 1000},
		{VesselID: "9321483", Latitude: 1.0, Longitude: 103, Timestamp: 2000},
	}
	for _, m := range feed {
		payload, _ := json.Marshal(m)
		sub.handleMessage(nil, &fakeMQTTMessage{payload: payload})
	}

	if len(repo.inserts) != 1 || repo.inserts[0] != 2000 {
		t.Errorf("expected only ts=2000 stored, got %v", repo.inserts)
	}
	if tracker.StaleSamples() != 2 {
		t.Errorf("expected 2 stale samples, got %d", tracker.StaleSamples())
	}

	live, err := vesselSvc.GetLatest(context.Background(), "9321483")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if live.Timestamp.Unix() != 2000 || live.Position.Lat != 1.5 {
		t.Errorf("live position regressed: ts=%d lat=%f", live.Timestamp.Unix(), live.Position.Lat)
	}
}
