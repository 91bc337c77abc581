package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

const TopicPattern = "/fleet/vessel/+/position"

type vesselService interface {
	SaveSample(ctx context.Context, s *domain.VesselSample) error
}

type geofenceTracker interface {
	Fresh(vesselID string, ts time.Time) bool
	OnSample(ctx context.Context, s *domain.VesselSample) []domain.GeofenceEvent
}

type positionMessage struct {
	VesselID    string   `json:"imo"`
	Name        string   `json:"name"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Heading     *float64 `json:"heading"`
	Speed       float64  `json:"speed"`
	Destination string   `json:"destination"`
	Timestamp   int64    `json:"timestamp"`
}

type PositionSubscriber struct {
	client    mqtt.Client
	vesselSvc vesselService
	tracker   geofenceTracker
}

func NewPositionSubscriber(client mqtt.Client, vesselSvc vesselService, tracker geofenceTracker) *PositionSubscriber {
	return &PositionSubscriber{
		client:    client,
		vesselSvc: vesselSvc,
		tracker:   tracker,
	}
}

func (s *PositionSubscriber) Start() error {
	token := s.client.Subscribe(TopicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *PositionSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw positionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid position message: %v", err)
		return
	}

	if err := validatePositionMessage(&raw); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	sample := &domain.VesselSample{
		VesselID:    raw.VesselID,
		Name:        raw.Name,
		Position:    domain.LatLng{Lat: raw.Latitude, Lng: raw.Longitude},
		Heading:     raw.Heading,
		Speed:       raw.Speed,
		Destination: raw.Destination,
		Timestamp:   time.Unix(raw.Timestamp, 0),
	}

	// stale samples are neither stored nor tracked
	if !s.tracker.Fresh(sample.VesselID, sample.Timestamp) {
		return
	}

	ctx := context.Background()

	if err := s.vesselSvc.SaveSample(ctx, sample); err != nil {
		log.Printf("save position error: %v", err)
		return
	}

	if events := s.tracker.OnSample(ctx, sample); len(events) > 0 {
		log.Printf("vessel=%s produced %d geofence events", sample.VesselID, len(events))
	}
}

func validatePositionMessage(msg *positionMessage) error {
	if msg.VesselID == "" {
		return fmt.Errorf("imo: required")
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Heading != nil && (*msg.Heading < 0 || *msg.Heading >= 360) {
		return fmt.Errorf("heading: must be in [0, 360)")
	}
	if msg.Speed < 0 {
		return fmt.Errorf("speed: must not be negative")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
