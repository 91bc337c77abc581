package core

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
	handler "github.com/nandanugg/vessel-geofence/module/core/internal/handler/http"
	"github.com/nandanugg/vessel-geofence/module/core/internal/handler/subscriber"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/cache/redis"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/database/postgres"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/publisher"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/publisher/kafka"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/publisher/logger"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/publisher/rabbitmq"
	"github.com/nandanugg/vessel-geofence/module/core/service"
)

type Options struct {
	SinkBuffer  int
	PositionTTL time.Duration
}

type Module struct {
	Registry    *service.GeofenceRegistry
	Tracker     *service.Tracker
	Sink        *service.NotificationSink
	GeofenceSvc *service.GeofenceService
	VesselSvc   *service.VesselService

	vesselHandler   *handler.VesselHandler
	geofenceHandler *handler.GeofenceHandler
	subscriber      *subscriber.PositionSubscriber
}

// Build wires the module. kafkaWriter may be nil, in which case events only go
// to RabbitMQ, the event history table and the log.
func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, rdb *goredis.Client, kafkaWriter *kafkago.Writer, opts Options) (*Module, error) {
	positionRepo := postgres.NewPositionRepo(db)
	eventRepo := postgres.NewEventRepo(db)
	geofenceRepo := postgres.NewGeofenceRepo(db)
	positionCache := redis.NewPositionCache(rdb, opts.PositionTTL)

	rabbitPub, err := rabbitmq.NewEventPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("event publisher: %w", err)
	}

	observers := []publisher.EventPublisher{
		publisher.EventPublisherFunc(eventRepo.Insert),
		rabbitPub,
		logger.NewEventPublisher(log.Default()),
	}
	if kafkaWriter != nil {
		observers = append(observers, kafka.NewEventPublisher(kafkaWriter))
	}

	registry := service.NewGeofenceRegistry()
	sink := service.NewNotificationSink(opts.SinkBuffer, observers...)
	tracker := service.NewTracker(registry, sink)
	registry.OnRemoved(tracker.DropGeofence)

	geofenceSvc := service.NewGeofenceService(registry, geofenceRepo, eventRepo, tracker)
	vesselSvc := service.NewVesselService(positionRepo, positionCache, tracker)

	return &Module{
		Registry:        registry,
		Tracker:         tracker,
		Sink:            sink,
		GeofenceSvc:     geofenceSvc,
		VesselSvc:       vesselSvc,
		vesselHandler:   handler.NewVesselHandler(vesselSvc),
		geofenceHandler: handler.NewGeofenceHandler(geofenceSvc),
		subscriber:      subscriber.NewPositionSubscriber(mqttClient, vesselSvc, tracker),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.vesselHandler.Register(r)
	m.geofenceHandler.Register(r)
}

// Restore loads stored and seed geofences. Call it before StartSubscribers so
// the first samples are evaluated against the full set.
func (m *Module) Restore(ctx context.Context, seed []domain.Geofence) error {
	return m.GeofenceSvc.Restore(ctx, seed)
}

func (m *Module) StartSubscribers() error {
	m.Sink.Start()
	return m.subscriber.Start()
}

// Stats summarises tracker and sink counters for the health endpoint.
func (m *Module) Stats() gin.H {
	return gin.H{
		"geofences":       len(m.Registry.Snapshot()),
		"tracked_vessels": len(m.Tracker.Tracked()),
		"stale_samples":   m.Tracker.StaleSamples(),
		"dropped_events":  m.Sink.Dropped(),
	}
}

func (m *Module) Close() {
	m.Sink.Close()
}
