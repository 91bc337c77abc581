package service

import (
	"context"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

type geofenceSnapshotter interface {
	Snapshot() []domain.Geofence
}

type eventSink interface {
	Publish(ctx context.Context, ev *domain.GeofenceEvent)
}

type vesselTrack struct {
	mu       sync.Mutex
	lastSeen time.Time
	states   map[string]domain.ContainmentState
}

// Tracker turns containment snapshots into ENTER/EXIT events, one state
// machine per (vessel, geofence) pair. Samples of the same vessel are
// processed one at a time; different vessels may be processed concurrently.
type Tracker struct {
	registry geofenceSnapshotter
	sink     eventSink

	// passes hold the read side; cascades that drop state hold the write side
	passMu sync.RWMutex

	mu      sync.Mutex
	vessels map[string]*vesselTrack

	stale atomic.Uint64
	newID func() string
}

func NewTracker(registry geofenceSnapshotter, sink eventSink) *Tracker {
	return &Tracker{
		registry: registry,
		sink:     sink,
		vessels:  make(map[string]*vesselTrack),
		newID:    uuid.NewString,
	}
}

// OnSample evaluates s against every registered geofence and publishes one
// event per state change. Samples not newer than the vessel's last processed
// sample are dropped and logged.
func (t *Tracker) OnSample(ctx context.Context, s *domain.VesselSample) []domain.GeofenceEvent {
	t.passMu.RLock()
	defer t.passMu.RUnlock()

	fences := t.registry.Snapshot()
	vt := t.track(s.VesselID)

	vt.mu.Lock()
	defer vt.mu.Unlock()

	if t.isStale(s.VesselID, s.Timestamp, vt.lastSeen) {
		return nil
	}
	vt.lastSeen = s.Timestamp

	var events []domain.GeofenceEvent
	for i := range fences {
		gf := &fences[i]
		inside, err := Evaluate(s.Position, gf)
		if err != nil {
			log.Printf("tracker: evaluate geofence=%s: %v", gf.ID, err)
			continue
		}

		prev := vt.states[gf.ID]
		next := domain.Outside
		if inside {
			next = domain.Inside
		}
		vt.states[gf.ID] = next
		if prev == next {
			continue
		}

		kind := domain.GeofenceEnter
		if next == domain.Outside {
			kind = domain.GeofenceExit
		}
		events = append(events, domain.GeofenceEvent{
			ID:            t.newID(),
			VesselID:      s.VesselID,
			GeofenceID:    gf.ID,
			GeofenceLabel: gf.Label,
			Kind:          kind,
			Position:      s.Position,
			Timestamp:     s.Timestamp,
		})
	}

	for i := range events {
		ev := events[i]
		t.sink.Publish(ctx, &ev)
	}
	return events
}

// Fresh reports whether a sample of vesselID taken at ts would be processed.
// Stale samples are logged and counted here, so callers can skip storing them.
func (t *Tracker) Fresh(vesselID string, ts time.Time) bool {
	t.mu.Lock()
	vt, ok := t.vessels[vesselID]
	t.mu.Unlock()
	if !ok {
		return true
	}

	vt.mu.Lock()
	defer vt.mu.Unlock()
	return !t.isStale(vesselID, ts, vt.lastSeen)
}

func (t *Tracker) isStale(vesselID string, ts, last time.Time) bool {
	if last.IsZero() || ts.After(last) {
		return false
	}
	t.stale.Add(1)
	log.Printf("tracker: %v: vessel=%s ts=%s last=%s", domain.ErrStaleSample,
		vesselID, ts.Format(time.RFC3339), last.Format(time.RFC3339))
	return true
}

// Untrack forgets a vessel. If it reports again it starts from OUTSIDE for
// every geofence, so a vessel already inside one gets a fresh ENTER.
func (t *Tracker) Untrack(vesselID string) {
	t.passMu.Lock()
	defer t.passMu.Unlock()

	t.mu.Lock()
	delete(t.vessels, vesselID)
	t.mu.Unlock()
}

// DropGeofence removes the state of every pair involving geofenceID. It waits
// for in-flight passes so none of them can recreate the removed entries.
func (t *Tracker) DropGeofence(geofenceID string) {
	t.passMu.Lock()
	defer t.passMu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, vt := range t.vessels {
		vt.mu.Lock()
		delete(vt.states, geofenceID)
		vt.mu.Unlock()
	}
}

// State returns the containment state of a pair and whether it has been
// evaluated yet.
func (t *Tracker) State(vesselID, geofenceID string) (domain.ContainmentState, bool) {
	t.mu.Lock()
	vt, ok := t.vessels[vesselID]
	t.mu.Unlock()
	if !ok {
		return domain.Outside, false
	}

	vt.mu.Lock()
	defer vt.mu.Unlock()
	st, ok := vt.states[geofenceID]
	return st, ok
}

func (t *Tracker) Tracked() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.vessels))
	for id := range t.vessels {
		ids = append(ids, id)
	}
	return ids
}

// Occupancy returns the ids of the vessels currently inside geofenceID, sorted.
func (t *Tracker) Occupancy(geofenceID string) []string {
	t.mu.Lock()
	tracks := make(map[string]*vesselTrack, len(t.vessels))
	for id, vt := range t.vessels {
		tracks[id] = vt
	}
	t.mu.Unlock()

	var ids []string
	for id, vt := range tracks {
		vt.mu.Lock()
		if vt.states[geofenceID] == domain.Inside {
			ids = append(ids, id)
		}
		vt.mu.Unlock()
	}
	sort.Strings(ids)
	return ids
}

// Containing returns the ids of the geofences vesselID is currently inside,
// sorted.
func (t *Tracker) Containing(vesselID string) []string {
	t.mu.Lock()
	vt, ok := t.vessels[vesselID]
	t.mu.Unlock()
	if !ok {
		return nil
	}

	vt.mu.Lock()
	defer vt.mu.Unlock()
	var ids []string
	for id, st := range vt.states {
		if st == domain.Inside {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (t *Tracker) StaleSamples() uint64 {
	return t.stale.Load()
}

func (t *Tracker) track(vesselID string) *vesselTrack {
	t.mu.Lock()
	defer t.mu.Unlock()

	vt, ok := t.vessels[vesselID]
	if !ok {
		vt = &vesselTrack{states: make(map[string]domain.ContainmentState)}
		t.vessels[vesselID] = vt
	}
	return vt
}
