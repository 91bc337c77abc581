package service

import (
	"fmt"
	"math"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

const (
	earthRadiusMeters = 6371000

	// absorbs float rounding so a point placed exactly on the radius stays inside
	circleToleranceMeters = 1e-6
	// in projected degrees, roughly a tenth of a millimetre
	edgeToleranceDegrees = 1e-9
)

// Evaluate reports whether pos lies inside gf. Boundaries are inclusive for
// both shapes. Distances assume a spherical Earth, and polygons are tested on
// an equirectangular projection centred on the polygon's mean latitude, so
// very large polygons or ones spanning a pole are not handled exactly.
func Evaluate(pos domain.LatLng, gf *domain.Geofence) (bool, error) {
	switch gf.Kind {
	case domain.ShapeCircle:
		if gf.Circle == nil {
			return false, fmt.Errorf("%w: %s: circle shape missing", domain.ErrInvalidGeofence, gf.ID)
		}
		dist := haversine(pos.Lat, pos.Lng, gf.Circle.Center.Lat, gf.Circle.Center.Lng)
		return dist <= gf.Circle.RadiusMeters+circleToleranceMeters, nil
	case domain.ShapePolygon:
		if gf.Polygon == nil || len(gf.Polygon.Vertices) < 3 {
			return false, fmt.Errorf("%w: %s: polygon needs at least 3 vertices", domain.ErrInvalidGeofence, gf.ID)
		}
		return polygonContains(pos, gf.Polygon.Vertices), nil
	default:
		return false, fmt.Errorf("%w: %s: unknown shape %q", domain.ErrInvalidGeofence, gf.ID, gf.Kind)
	}
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

type point struct{ x, y float64 }

// polygonContains runs an even-odd ray cast. Points on an edge or vertex
// count as inside.
func polygonContains(pos domain.LatLng, vertices []domain.LatLng) bool {
	var latSum float64
	for _, v := range vertices {
		latSum += v.Lat
	}
	scale := math.Cos(toRad(latSum / float64(len(vertices))))
	ref := vertices[0].Lng

	project := func(ll domain.LatLng) point {
		return point{x: unwrapLng(ll.Lng, ref) * scale, y: ll.Lat}
	}

	p := project(pos)
	pts := make([]point, len(vertices))
	for i, v := range vertices {
		pts[i] = project(v)
	}

	inside := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if onSegment(p, a, b) {
			return true
		}
		if (a.y > p.y) != (b.y > p.y) {
			xCross := a.x + (p.y-a.y)*(b.x-a.x)/(b.y-a.y)
			if p.x < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// unwrapLng shifts lng by whole turns so it lies within 180 degrees of ref.
func unwrapLng(lng, ref float64) float64 {
	d := lng - ref
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return ref + d
}

func onSegment(p, a, b point) bool {
	length := math.Hypot(b.x-a.x, b.y-a.y)
	cross := (p.x-a.x)*(b.y-a.y) - (p.y-a.y)*(b.x-a.x)
	if math.Abs(cross) > edgeToleranceDegrees*length {
		return false
	}
	return p.x >= math.Min(a.x, b.x)-edgeToleranceDegrees &&
		p.x <= math.Max(a.x, b.x)+edgeToleranceDegrees &&
		p.y >= math.Min(a.y, b.y)-edgeToleranceDegrees &&
		p.y <= math.Max(a.y, b.y)+edgeToleranceDegrees
}
