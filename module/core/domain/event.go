package domain

import "time"

type GeofenceEventKind string

const (
	GeofenceEnter GeofenceEventKind = "ENTER"
	GeofenceExit  GeofenceEventKind = "EXIT"
)

// GeofenceEvent is a single containment transition for a (vessel, geofence) pair.
type GeofenceEvent struct {
	ID            string            `json:"id"`
	VesselID      string            `json:"imo"`
	GeofenceID    string            `json:"geofence_id"`
	GeofenceLabel string            `json:"geofence_label"`
	Kind          GeofenceEventKind `json:"kind"`
	Position      LatLng            `json:"position"`
	Timestamp     time.Time         `json:"timestamp"`
}

type EventQuery struct {
	VesselID   string
	GeofenceID string
	Start      time.Time
	End        time.Time
}
