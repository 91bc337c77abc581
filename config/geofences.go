package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

type geofenceFile struct {
	Geofences []domain.Geofence `yaml:"geofences"`
}

// LoadGeofences reads seed geofences from a YAML file. A missing file yields
// no geofences.
func LoadGeofences(path string) ([]domain.Geofence, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read geofences: %w", err)
	}

	var f geofenceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse geofences: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Geofences))
	for i := range f.Geofences {
		gf := &f.Geofences[i]
		if err := gf.Validate(); err != nil {
			return nil, fmt.Errorf("geofence #%d: %w", i, err)
		}
		if _, dup := seen[gf.ID]; dup {
			return nil, fmt.Errorf("geofence #%d: %w: %s", i, domain.ErrDuplicateID, gf.ID)
		}
		seen[gf.ID] = struct{}{}
	}
	return f.Geofences, nil
}
