package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*PositionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewPositionCache(rdb, ttl), mr
}

func sample(vesselID string, ts int64) *domain.VesselSample {
	heading := 45.0
	return &domain.VesselSample{
		VesselID:  vesselID,
		Name:      "EVER GIVEN",
		Position:  domain.LatLng{Lat: 1.0412, Lng: 103.0021},
		Heading:   &heading,
		Speed:     12.5,
		Timestamp: time.Unix(ts, 0),
	}
}

func TestSetGet(t *testing.T) {
	c, mr := newTestCache(t, 0)
	ctx := context.Background()

	if err := c.Set(ctx, sample("9321483", 1715003456)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("vessel:9321483:position") {
		t.Fatal("expected position key")
	}
	if ok, _ := mr.SIsMember(trackedSetKey, "9321483"); !ok {
		t.Fatal("expected vessel in tracked set")
	}

	got, err := c.Get(ctx, "9321483")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "EVER GIVEN" || got.Position.Lat != 1.0412 {
		t.Errorf("unexpected sample: %+v", got)
	}
	if got.Heading == nil || *got.Heading != 45 {
		t.Errorf("expected heading 45, got %v", got.Heading)
	}
	if !got.Timestamp.Equal(time.Unix(1715003456, 0)) {
		t.Errorf("unexpected timestamp: %v", got.Timestamp)
	}
}

func TestSet_KeepsNewestSample(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	newer := sample("9321483", 2000)
	newer.Position.Lat = 1.5
	if err := c.Set(ctx, newer); err != nil {
		t.Fatalf("set: %v", err)
	}

	for _, ts := range []int64{1000, 2000} {
		err := c.Set(ctx, sample("9321483", ts))
		if !errors.Is(err, domain.ErrStaleSample) {
			t.Fatalf("ts=%d: expected ErrStaleSample, got %v", ts, err)
		}
	}

	got, err := c.Get(ctx, "9321483")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Timestamp.Unix() != 2000 || got.Position.Lat != 1.5 {
		t.Errorf("live position regressed: ts=%d lat=%f", got.Timestamp.Unix(), got.Position.Lat)
	}

	if err := c.Set(ctx, sample("9321483", 3000)); err != nil {
		t.Fatalf("newer set: %v", err)
	}
}

func TestGet_Missing(t *testing.T) {
	c, _ := newTestCache(t, 0)

	_, err := c.Get(context.Background(), "UNKNOWN")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSet_Expires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, sample("9321483", 1)); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := c.Get(ctx, "9321483"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}

	live, err := c.Live(ctx)
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	if len(live) != 0 {
		t.Errorf("expected expired vessel skipped, got %+v", live)
	}
}

func TestLive_SortedByVessel(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	for _, id := range []string{"9811000", "9321483", "9500001"} {
		if err := c.Set(ctx, sample(id, 1)); err != nil {
			t.Fatalf("set %s: %v", id, err)
		}
	}

	live, err := c.Live(ctx)
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	if len(live) != 3 {
		t.Fatalf("expected 3 vessels, got %d", len(live))
	}
	want := []string{"9321483", "9500001", "9811000"}
	for i, s := range live {
		if s.VesselID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], s.VesselID)
		}
	}
}

func TestDelete(t *testing.T) {
	c, mr := newTestCache(t, 0)
	ctx := context.Background()

	_ = c.Set(ctx, sample("9321483", 1))
	if err := c.Delete(ctx, "9321483"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if mr.Exists("vessel:9321483:position") {
		t.Error("expected position key removed")
	}
	live, _ := c.Live(ctx)
	if len(live) != 0 {
		t.Errorf("expected no live vessels, got %+v", live)
	}
}
