package service

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/publisher"
)

const (
	defaultSinkBuffer   = 1024
	observerPublishWait = 5 * time.Second
)

// NotificationSink forwards geofence events to its observers. Publish never
// blocks: events are queued and a single worker delivers them in order. A full
// queue drops the event, and observer failures are logged without retry.
type NotificationSink struct {
	observers []publisher.EventPublisher
	queue     chan *domain.GeofenceEvent
	done      chan struct{}

	mu      sync.RWMutex
	closed  bool
	started atomic.Bool

	dropped atomic.Uint64
}

func NewNotificationSink(buffer int, observers ...publisher.EventPublisher) *NotificationSink {
	if buffer <= 0 {
		buffer = defaultSinkBuffer
	}
	return &NotificationSink{
		observers: observers,
		queue:     make(chan *domain.GeofenceEvent, buffer),
		done:      make(chan struct{}),
	}
}

func (s *NotificationSink) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
}

func (s *NotificationSink) Publish(_ context.Context, ev *domain.GeofenceEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.dropped.Add(1)
		log.Printf("sink: closed, dropping event id=%s vessel=%s geofence=%s kind=%s", ev.ID, ev.VesselID, ev.GeofenceID, ev.Kind)
		return
	}

	select {
	case s.queue <- ev:
	default:
		s.dropped.Add(1)
		log.Printf("sink: queue full, dropping event id=%s vessel=%s geofence=%s kind=%s", ev.ID, ev.VesselID, ev.GeofenceID, ev.Kind)
	}
}

// Close stops accepting events and waits until the queued ones are delivered.
func (s *NotificationSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	if s.started.Load() {
		<-s.done
	}
}

func (s *NotificationSink) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *NotificationSink) run() {
	defer close(s.done)
	for ev := range s.queue {
		s.deliver(ev)
	}
}

func (s *NotificationSink) deliver(ev *domain.GeofenceEvent) {
	for _, obs := range s.observers {
		ctx, cancel := context.WithTimeout(context.Background(), observerPublishWait)
		if err := obs.PublishEvent(ctx, ev); err != nil {
			log.Printf("sink: observer %T failed event id=%s: %v", obs, ev.ID, err)
		}
		cancel()
	}
}
