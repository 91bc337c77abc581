package service

import (
	"fmt"
	"sync"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

// GeofenceRegistry holds the monitored geofences in registration order. The
// backing slice is never modified in place: writers build a new slice and swap
// it, so a snapshot handed to an evaluation pass stays consistent.
type GeofenceRegistry struct {
	// writeMu serialises writers and is held until removal listeners return,
	// so a re-registered id never overlaps the cascade of its predecessor.
	writeMu sync.Mutex

	mu        sync.RWMutex
	fences    []domain.Geofence
	onRemoved []func(id string)
}

func NewGeofenceRegistry() *GeofenceRegistry {
	return &GeofenceRegistry{}
}

// OnRemoved registers fn to run after a geofence is deregistered.
func (r *GeofenceRegistry) OnRemoved(fn func(id string)) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRemoved = append(r.onRemoved, fn)
}

func (r *GeofenceRegistry) Register(gf domain.Geofence) error {
	if err := gf.Validate(); err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(gf.ID) >= 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateID, gf.ID)
	}

	next := make([]domain.Geofence, len(r.fences), len(r.fences)+1)
	copy(next, r.fences)
	r.fences = append(next, gf.Clone())
	return nil
}

// Replace swaps the shape and label of an existing geofence, keeping its
// position in the list. Containment state is kept, so the next sample of a
// vessel that was inside the old shape but is outside the new one yields EXIT.
func (r *GeofenceRegistry) Replace(gf domain.Geofence) error {
	if err := gf.Validate(); err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(gf.ID)
	if i < 0 {
		return fmt.Errorf("geofence %s: %w", gf.ID, domain.ErrNotFound)
	}
	next := make([]domain.Geofence, len(r.fences))
	copy(next, r.fences)
	next[i] = gf.Clone()
	r.fences = next
	return nil
}

// Deregister removes the geofence and runs the removal listeners before any
// other write is admitted.
func (r *GeofenceRegistry) Deregister(id string) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return fmt.Errorf("geofence %s: %w", id, domain.ErrNotFound)
	}
	next := make([]domain.Geofence, 0, len(r.fences)-1)
	next = append(next, r.fences[:i]...)
	r.fences = append(next, r.fences[i+1:]...)
	listeners := r.onRemoved
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(id)
	}
	return nil
}

func (r *GeofenceRegistry) Get(id string) (domain.Geofence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Geofence{}, fmt.Errorf("geofence %s: %w", id, domain.ErrNotFound)
	}
	return r.fences[i].Clone(), nil
}

// List returns a copy of the registered geofences in registration order.
func (r *GeofenceRegistry) List() []domain.Geofence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Geofence, len(r.fences))
	for i, gf := range r.fences {
		out[i] = gf.Clone()
	}
	return out
}

// Snapshot returns the current set without copying. Callers must treat it as
// read-only.
func (r *GeofenceRegistry) Snapshot() []domain.Geofence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fences
}

func (r *GeofenceRegistry) indexOf(id string) int {
	for i := range r.fences {
		if r.fences[i].ID == id {
			return i
		}
	}
	return -1
}
