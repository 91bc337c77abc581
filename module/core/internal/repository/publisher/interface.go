package publisher

import (
	"context"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *domain.GeofenceEvent) error
}

// EventPublisherFunc adapts a plain function, such as a repository insert, to
// an EventPublisher.
type EventPublisherFunc func(ctx context.Context, ev *domain.GeofenceEvent) error

func (f EventPublisherFunc) PublishEvent(ctx context.Context, ev *domain.GeofenceEvent) error {
	return f(ctx, ev)
}
