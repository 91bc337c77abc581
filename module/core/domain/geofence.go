package domain

import "errors"

var (
	ErrDuplicateID     = errors.New("duplicate geofence id")
	ErrNotFound        = errors.New("not found")
	ErrInvalidGeofence = errors.New("invalid geofence")
	ErrStaleSample     = errors.New("stale sample")
)

type LatLng struct {
	Lat float64 `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Lng float64 `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
}

type ShapeKind string

const (
	ShapeCircle  ShapeKind = "circle"
	ShapePolygon ShapeKind = "polygon"
)

type Circle struct {
	Center       LatLng  `json:"center" yaml:"center"`
	RadiusMeters float64 `json:"radius_meters" yaml:"radius_meters" validate:"gt=0"`
}

// Polygon vertices are implicitly closed; the last vertex must not repeat the first.
type Polygon struct {
	Vertices []LatLng `json:"vertices" yaml:"vertices" validate:"dive"`
}

// Geofence is immutable once registered. Edits replace the whole value.
type Geofence struct {
	ID      string    `json:"id" yaml:"id" validate:"required"`
	Label   string    `json:"label" yaml:"label"`
	Kind    ShapeKind `json:"kind" yaml:"kind" validate:"oneof=circle polygon"`
	Circle  *Circle   `json:"circle,omitempty" yaml:"circle,omitempty"`
	Polygon *Polygon  `json:"polygon,omitempty" yaml:"polygon,omitempty"`
}

type ContainmentState int

const (
	Outside ContainmentState = iota
	Inside
)

func (s ContainmentState) String() string {
	if s == Inside {
		return "INSIDE"
	}
	return "OUTSIDE"
}
