package logger

import (
	"context"
	"log"
	"time"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/publisher"
)

var _ publisher.EventPublisher = (*EventPublisher)(nil)

// EventPublisher writes one alert line per event.
type EventPublisher struct {
	l *log.Logger
}

func NewEventPublisher(l *log.Logger) *EventPublisher {
	if l == nil {
		l = log.Default()
	}
	return &EventPublisher{l: l}
}

func (p *EventPublisher) PublishEvent(_ context.Context, ev *domain.GeofenceEvent) error {
	verb := "entered"
	if ev.Kind == domain.GeofenceExit {
		verb = "left"
	}
	p.l.Printf("geofence alert: vessel=%s %s geofence=%s (%s) at=%s lat=%.5f lng=%.5f",
		ev.VesselID, verb, ev.GeofenceID, ev.GeofenceLabel, ev.Timestamp.Format(time.RFC3339), ev.Position.Lat, ev.Position.Lng)
	return nil
}
