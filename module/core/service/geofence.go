package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/database"
)

type geofenceRegistry interface {
	Register(gf domain.Geofence) error
	Replace(gf domain.Geofence) error
	Deregister(id string) error
	Get(id string) (domain.Geofence, error)
	List() []domain.Geofence
}

type occupancyTracker interface {
	Occupancy(geofenceID string) []string
	Containing(vesselID string) []string
}

// GeofenceService is the admin surface over the registry. Every change is
// mirrored into the snapshot repository so the registry can be restored on
// startup.
type GeofenceService struct {
	registry geofenceRegistry
	repo     database.GeofenceRepository
	events   database.EventRepository
	tracker  occupancyTracker
}

func NewGeofenceService(registry geofenceRegistry, repo database.GeofenceRepository, events database.EventRepository, tracker occupancyTracker) *GeofenceService {
	return &GeofenceService{
		registry: registry,
		repo:     repo,
		events:   events,
		tracker:  tracker,
	}
}

func (s *GeofenceService) Register(ctx context.Context, gf domain.Geofence) error {
	if err := s.registry.Register(gf); err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, &gf); err != nil {
		if rbErr := s.registry.Deregister(gf.ID); rbErr != nil {
			log.Printf("geofence rollback id=%s: %v", gf.ID, rbErr)
		}
		return fmt.Errorf("save geofence: %w", err)
	}
	return nil
}

func (s *GeofenceService) Replace(ctx context.Context, gf domain.Geofence) error {
	prev, err := s.registry.Get(gf.ID)
	if err != nil {
		return err
	}
	if err := s.registry.Replace(gf); err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, &gf); err != nil {
		if rbErr := s.registry.Replace(prev); rbErr != nil {
			log.Printf("geofence rollback id=%s: %v", gf.ID, rbErr)
		}
		return fmt.Errorf("save geofence: %w", err)
	}
	return nil
}

// Deregister removes the geofence from the registry first, so tracking stops
// even if the snapshot delete fails.
func (s *GeofenceService) Deregister(ctx context.Context, id string) error {
	if err := s.registry.Deregister(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete geofence: %w", err)
	}
	return nil
}

func (s *GeofenceService) Get(_ context.Context, id string) (domain.Geofence, error) {
	return s.registry.Get(id)
}

func (s *GeofenceService) List(_ context.Context) []domain.Geofence {
	return s.registry.List()
}

// Occupants returns the vessels currently inside the geofence.
func (s *GeofenceService) Occupants(_ context.Context, id string) ([]string, error) {
	if _, err := s.registry.Get(id); err != nil {
		return nil, err
	}
	return s.tracker.Occupancy(id), nil
}

// VesselGeofences returns the geofences the vessel is currently inside, in
// registration order.
func (s *GeofenceService) VesselGeofences(_ context.Context, vesselID string) []domain.Geofence {
	inside := make(map[string]struct{})
	for _, id := range s.tracker.Containing(vesselID) {
		inside[id] = struct{}{}
	}

	var out []domain.Geofence
	for _, gf := range s.registry.List() {
		if _, ok := inside[gf.ID]; ok {
			out = append(out, gf)
		}
	}
	return out
}

func (s *GeofenceService) Events(ctx context.Context, query *domain.EventQuery) ([]domain.GeofenceEvent, error) {
	return s.events.Find(ctx, query)
}

// Restore loads the stored snapshot into the registry, then applies seed
// geofences that were never seeded before. A seed geofence deleted through the
// API stays deleted. Invalid stored entries are logged and skipped.
func (s *GeofenceService) Restore(ctx context.Context, seed []domain.Geofence) error {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load geofences: %w", err)
	}

	for _, gf := range stored {
		if err := s.registry.Register(gf); err != nil {
			log.Printf("restore geofence id=%s: %v", gf.ID, err)
		}
	}

	seeded, err := s.repo.SeededIDs(ctx)
	if err != nil {
		return fmt.Errorf("load seeded ids: %w", err)
	}

	for _, gf := range seed {
		if _, ok := seeded[gf.ID]; ok {
			continue
		}
		err := s.Register(ctx, gf)
		switch {
		case err == nil:
			log.Printf("seeded geofence id=%s", gf.ID)
		case errors.Is(err, domain.ErrDuplicateID):
		default:
			return fmt.Errorf("seed geofence %s: %w", gf.ID, err)
		}
		if err := s.repo.MarkSeeded(ctx, gf.ID); err != nil {
			return fmt.Errorf("mark seed %s: %w", gf.ID, err)
		}
	}
	return nil
}
