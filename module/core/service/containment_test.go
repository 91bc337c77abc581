package service

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

// northOf returns the point meters due north of p along its meridian.
func northOf(p domain.LatLng, meters float64) domain.LatLng {
	return domain.LatLng{Lat: p.Lat + meters/earthRadiusMeters*180/math.Pi, Lng: p.Lng}
}

func circleFence(id string, center domain.LatLng, radius float64) domain.Geofence {
	return domain.Geofence{
		ID:     id,
		Label:  id,
		Kind:   domain.ShapeCircle,
		Circle: &domain.Circle{Center: center, RadiusMeters: radius},
	}
}

func polygonFence(id string, vertices ...domain.LatLng) domain.Geofence {
	return domain.Geofence{
		ID:      id,
		Label:   id,
		Kind:    domain.ShapePolygon,
		Polygon: &domain.Polygon{Vertices: vertices},
	}
}

func ll(lat, lng float64) domain.LatLng {
	return domain.LatLng{Lat: lat, Lng: lng}
}

func TestEvaluate_Circle(t *testing.T) {
	center := ll(1.0, 103.0)
	gf := circleFence("port-A", center, 5000)

	tests := []struct {
		name string
		pos  domain.LatLng
		want bool
	}{
		{"center", center, true},
		{"well inside", northOf(center, 4000), true},
		{"exactly on radius", northOf(center, 5000), true},
		{"just past radius", northOf(center, 5000.01), false},
		{"far outside", northOf(center, 6000), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.pos, &gf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_Square(t *testing.T) {
	gf := polygonFence("square", ll(0, 0), ll(1, 0), ll(1, 1), ll(0, 1))

	tests := []struct {
		name string
		pos  domain.LatLng
		want bool
	}{
		{"centre", ll(0.5, 0.5), true},
		{"north of square", ll(1.5, 0.5), false},
		{"west of square", ll(0.5, -0.5), false},
		{"on south edge", ll(0, 0.5), true},
		{"on east edge", ll(0.5, 1), true},
		{"on vertex", ll(0, 0), true},
		{"on opposite vertex", ll(1, 1), true},
		{"just outside east edge", ll(0.5, 1.0001), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.pos, &gf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestEvaluate_ConcavePolygon(t *testing.T) {
	// C shape open to the east: the notch spans lng 1..3, lat 1..2
	gf := polygonFence("harbour",
		ll(0, 0), ll(0, 3), ll(1, 3), ll(1, 1),
		ll(2, 1), ll(2, 3), ll(3, 3), ll(3, 0),
	)

	tests := []struct {
		name string
		pos  domain.LatLng
		want bool
	}{
		{"in the notch", ll(1.5, 2), false},
		{"west wall", ll(1.5, 0.5), true},
		{"south arm", ll(0.5, 2), true},
		{"north arm", ll(2.5, 2), true},
		{"notch mouth", ll(1.5, 3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.pos, &gf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestEvaluate_PolygonAcrossAntimeridian(t *testing.T) {
	gf := polygonFence("dateline", ll(-1, 179), ll(1, 179), ll(1, -179), ll(-1, -179))

	tests := []struct {
		name string
		pos  domain.LatLng
		want bool
	}{
		{"east side", ll(0, 179.5), true},
		{"west side", ll(0, -179.5), true},
		{"on the line", ll(0, 180), true},
		{"prime meridian", ll(0, 0), false},
		{"west of fence", ll(0, 178), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.pos, &gf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestEvaluate_DegeneratePolygon(t *testing.T) {
	gf := polygonFence("line", ll(0, 0), ll(1, 1))

	_, err := Evaluate(ll(0.5, 0.5), &gf)
	if !errors.Is(err, domain.ErrInvalidGeofence) {
		t.Fatalf("expected ErrInvalidGeofence, got %v", err)
	}
}

func TestEvaluate_UnknownShape(t *testing.T) {
	gf := domain.Geofence{ID: "blob", Kind: "blob"}

	_, err := Evaluate(ll(0, 0), &gf)
	if !errors.Is(err, domain.ErrInvalidGeofence) {
		t.Fatalf("expected ErrInvalidGeofence, got %v", err)
	}
}

func TestHaversine(t *testing.T) {
	// same point should be 0
	d := haversine(1.0, 103.0, 1.0, 103.0)
	if d != 0 {
		t.Errorf("expected 0, got %f", d)
	}

	// one degree of latitude is ~111.2km on the mean sphere
	d = haversine(0, 103.0, 1.0, 103.0)
	if math.Abs(d-111195) > 1 {
		t.Errorf("expected ~111195m, got %f", d)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	fences := []domain.Geofence{
		circleFence("port-A", ll(1.0, 103.0), 5000),
		polygonFence("harbour", ll(0, 0), ll(0, 3), ll(1, 3), ll(1, 1), ll(2, 1), ll(2, 3), ll(3, 3), ll(3, 0)),
	}

	properties.Property("same inputs give the same answer and leave the geofence untouched", prop.ForAll(
		func(lat, lng float64) bool {
			pos := ll(lat, lng)
			for i := range fences {
				before := fences[i].Clone()
				first, err1 := Evaluate(pos, &fences[i])
				second, err2 := Evaluate(pos, &fences[i])
				if err1 != nil || err2 != nil || first != second {
					return false
				}
				if !reflect.DeepEqual(before, fences[i]) {
					return false
				}
			}
			return true
		},
		gen.Float64Range(-90, 90),
		gen.Float64Range(-180, 180),
	))

	properties.TestingRun(t)
}

func TestEvaluate_CircleBoundaryProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("a point on the radius is inside and one a centimetre further is not", prop.ForAll(
		func(lat, lng, radius float64) bool {
			center := ll(lat, lng)
			gf := circleFence("c", center, radius)

			onEdge, _ := Evaluate(northOf(center, radius), &gf)
			past, _ := Evaluate(northOf(center, radius+0.01), &gf)
			return onEdge && !past
		},
		gen.Float64Range(-60, 60),
		gen.Float64Range(-180, 180),
		gen.Float64Range(10, 50000),
	))

	properties.TestingRun(t)
}
