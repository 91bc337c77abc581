package postgres

import (
	"context"
	"database/sql"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/database"
)

var _ database.EventRepository = (*EventRepo)(nil)

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Insert ignores an event id it has already stored.
func (r *EventRepo) Insert(ctx context.Context, ev *domain.GeofenceEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO geofence_events (id, vessel_id, geofence_id, geofence_label, kind, latitude, longitude, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING`,
		ev.ID, ev.VesselID, ev.GeofenceID, ev.GeofenceLabel, string(ev.Kind), ev.Position.Lat, ev.Position.Lng, ev.Timestamp,
	)
	return err
}

// Find filters by vessel and/or geofence within [Start, End]. Empty ids match
// everything.
func (r *EventRepo) Find(ctx context.Context, query *domain.EventQuery) ([]domain.GeofenceEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, vessel_id, geofence_id, geofence_label, kind, latitude, longitude, timestamp FROM geofence_events
		 WHERE ($1 = '' OR vessel_id = $1) AND ($2 = '' OR geofence_id = $2) AND timestamp >= $3 AND timestamp <= $4
		 ORDER BY timestamp ASC`,
		query.VesselID, query.GeofenceID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.GeofenceEvent
	for rows.Next() {
		var (
			ev   domain.GeofenceEvent
			kind string
		)
		if err := rows.Scan(&ev.ID, &ev.VesselID, &ev.GeofenceID, &ev.GeofenceLabel, &kind, &ev.Position.Lat, &ev.Position.Lng, &ev.Timestamp); err != nil {
			return nil, err
		}
		ev.Kind = domain.GeofenceEventKind(kind)
		results = append(results, ev)
	}
	return results, rows.Err()
}
