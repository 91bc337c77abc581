package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/database"
)

var _ database.GeofenceRepository = (*GeofenceRepo)(nil)

type GeofenceRepo struct {
	db *sql.DB
}

func NewGeofenceRepo(db *sql.DB) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

type shapeColumn struct {
	Circle  *domain.Circle  `json:"circle,omitempty"`
	Polygon *domain.Polygon `json:"polygon,omitempty"`
}

// Upsert keeps registered_at on update so List preserves registration order.
func (r *GeofenceRepo) Upsert(ctx context.Context, gf *domain.Geofence) error {
	shape, err := json.Marshal(shapeColumn{Circle: gf.Circle, Polygon: gf.Polygon})
	if err != nil {
		return fmt.Errorf("marshal shape: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO geofences (id, label, kind, shape) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET label = EXCLUDED.label, kind = EXCLUDED.kind, shape = EXCLUDED.shape`,
		gf.ID, gf.Label, string(gf.Kind), shape,
	)
	return err
}

func (r *GeofenceRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM geofences WHERE id = $1`, id)
	return err
}

func (r *GeofenceRepo) List(ctx context.Context) ([]domain.Geofence, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, kind, shape FROM geofences ORDER BY registered_at ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Geofence
	for rows.Next() {
		var (
			gf    domain.Geofence
			kind  string
			raw   []byte
			shape shapeColumn
		)
		if err := rows.Scan(&gf.ID, &gf.Label, &kind, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &shape); err != nil {
			return nil, fmt.Errorf("geofence %s: unmarshal shape: %w", gf.ID, err)
		}
		gf.Kind = domain.ShapeKind(kind)
		gf.Circle = shape.Circle
		gf.Polygon = shape.Polygon
		results = append(results, gf)
	}
	return results, rows.Err()
}

func (r *GeofenceRepo) SeededIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM geofence_seeds`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (r *GeofenceRepo) MarkSeeded(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO geofence_seeds (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id,
	)
	return err
}
