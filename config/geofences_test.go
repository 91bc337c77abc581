package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geofences.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGeofences(t *testing.T) {
	path := writeFile(t, `
geofences:
  - id: port-A
    label: Port A anchorage
    kind: circle
    circle:
      center: { latitude: 1.0, longitude: 103.0 }
      radius_meters: 5000
  - id: channel-east
    kind: polygon
    polygon:
      vertices:
        - { latitude: 0.95, longitude: 103.05 }
        - { latitude: 1.05, longitude: 103.05 }
        - { latitude: 1.05, longitude: 103.10 }
`)

	fences, err := LoadGeofences(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fences) != 2 {
		t.Fatalf("expected 2 geofences, got %d", len(fences))
	}
	if fences[0].Circle == nil || fences[0].Circle.RadiusMeters != 5000 {
		t.Errorf("unexpected circle: %+v", fences[0].Circle)
	}
	if fences[1].Polygon == nil || len(fences[1].Polygon.Vertices) != 3 {
		t.Errorf("unexpected polygon: %+v", fences[1].Polygon)
	}
}

func TestLoadGeofences_MissingFile(t *testing.T) {
	fences, err := LoadGeofences(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fences != nil {
		t.Errorf("expected no geofences, got %+v", fences)
	}
}

func TestLoadGeofences_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name: "two vertex polygon",
			body: `
geofences:
  - id: line
    kind: polygon
    polygon:
      vertices:
        - { latitude: 0, longitude: 0 }
        - { latitude: 1, longitude: 1 }
`,
			wantErr: domain.ErrInvalidGeofence,
		},
		{
			name: "duplicate id",
			body: `
geofences:
  - id: port-A
    kind: circle
    circle: { center: { latitude: 1, longitude: 103 }, radius_meters: 10 }
  - id: port-A
    kind: circle
    circle: { center: { latitude: 2, longitude: 103 }, radius_meters: 10 }
`,
			wantErr: domain.ErrDuplicateID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadGeofences(writeFile(t, tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadGeofences_BadYAML(t *testing.T) {
	if _, err := LoadGeofences(writeFile(t, "geofences: [")); err == nil {
		t.Fatal("expected error")
	}
}
