package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks field ranges and shape rules. A geofence that passes can be
// evaluated without error.
func (g *Geofence) Validate() error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGeofence, err)
	}
	switch g.Kind {
	case ShapeCircle:
		if g.Circle == nil || g.Polygon != nil {
			return fmt.Errorf("%w: %s: circle geofence needs exactly a circle shape", ErrInvalidGeofence, g.ID)
		}
	case ShapePolygon:
		if g.Polygon == nil || g.Circle != nil {
			return fmt.Errorf("%w: %s: polygon geofence needs exactly a polygon shape", ErrInvalidGeofence, g.ID)
		}
		if len(g.Polygon.Vertices) < 3 {
			return fmt.Errorf("%w: %s: polygon needs at least 3 vertices, got %d", ErrInvalidGeofence, g.ID, len(g.Polygon.Vertices))
		}
		if v := g.Polygon.Vertices; v[0] == v[len(v)-1] {
			return fmt.Errorf("%w: %s: polygon last vertex repeats the first", ErrInvalidGeofence, g.ID)
		}
	}
	return nil
}

// Clone returns a deep copy so a registered geofence cannot be mutated through
// the caller's value.
func (g Geofence) Clone() Geofence {
	out := g
	if g.Circle != nil {
		c := *g.Circle
		out.Circle = &c
	}
	if g.Polygon != nil {
		out.Polygon = &Polygon{Vertices: append([]LatLng(nil), g.Polygon.Vertices...)}
	}
	return out
}
