package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/publisher"
)

var _ publisher.EventPublisher = (*EventPublisher)(nil)

const (
	ExchangeName = "fleet.events"
	QueueName    = "geofence_events"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type EventPublisher struct {
	ch channel
}

func NewEventPublisher(conn *amqp.Connection) (*EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &EventPublisher{ch: ch}, nil
}

type eventMessage struct {
	ID            string                   `json:"id"`
	VesselID      string                   `json:"imo"`
	GeofenceID    string                   `json:"geofence_id"`
	GeofenceLabel string                   `json:"geofence_label"`
	Kind          domain.GeofenceEventKind `json:"kind"`
	Position      eventPosition            `json:"position"`
	Timestamp     int64                    `json:"timestamp"`
}

type eventPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *EventPublisher) PublishEvent(ctx context.Context, ev *domain.GeofenceEvent) error {
	body, err := json.Marshal(toEventMessage(ev))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   ev.ID,
		Type:        string(ev.Kind),
		Timestamp:   ev.Timestamp,
		Body:        body,
	})
}

func toEventMessage(ev *domain.GeofenceEvent) eventMessage {
	return eventMessage{
		ID:            ev.ID,
		VesselID:      ev.VesselID,
		GeofenceID:    ev.GeofenceID,
		GeofenceLabel: ev.GeofenceLabel,
		Kind:          ev.Kind,
		Position: eventPosition{
			Latitude:  ev.Position.Lat,
			Longitude: ev.Position.Lng,
		},
		Timestamp: ev.Timestamp.Unix(),
	}
}
