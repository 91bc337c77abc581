package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
	"github.com/nandanugg/vessel-geofence/module/core/internal/repository/database"
)

var _ database.PositionRepository = (*PositionRepo)(nil)

const positionColumns = `vessel_id, name, latitude, longitude, heading, speed, destination, timestamp`

type PositionRepo struct {
	db *sql.DB
}

func NewPositionRepo(db *sql.DB) *PositionRepo {
	return &PositionRepo{db: db}
}

// Insert ignores a sample whose (vessel, timestamp) is already stored.
func (r *PositionRepo) Insert(ctx context.Context, s *domain.VesselSample) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vessel_positions (`+positionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (vessel_id, timestamp) DO NOTHING`,
		s.VesselID, s.Name, s.Position.Lat, s.Position.Lng, nullFloat(s.Heading), s.Speed, s.Destination, s.Timestamp,
	)
	return err
}

func (r *PositionRepo) GetLatest(ctx context.Context, vesselID string) (*domain.VesselSample, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM vessel_positions WHERE vessel_id = $1 ORDER BY timestamp DESC LIMIT 1`,
		vesselID,
	)

	s, err := scanSample(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vessel %s: %w", vesselID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PositionRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.VesselSample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+positionColumns+` FROM vessel_positions WHERE vessel_id = $1 AND timestamp >= $2 AND timestamp <= $3 ORDER BY timestamp ASC`,
		query.VesselID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.VesselSample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *s)
	}
	return results, rows.Err()
}

func (r *PositionRepo) GetAllVessels(ctx context.Context) ([]domain.Vessel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT vessel_id, MAX(name) FROM vessel_positions GROUP BY vessel_id ORDER BY vessel_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Vessel
	for rows.Next() {
		var v domain.Vessel
		if err := rows.Scan(&v.VesselID, &v.Name); err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, rows.Err()
}

func (r *PositionRepo) CountVesselsByMonth(ctx context.Context, year int) ([]domain.MonthlyCount, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := r.db.QueryContext(ctx,
		`SELECT date_trunc('month', timestamp AT TIME ZONE 'UTC') AS month, COUNT(DISTINCT vessel_id)
		 FROM vessel_positions WHERE timestamp >= $1 AND timestamp < $2
		 GROUP BY month ORDER BY month`,
		start, start.AddDate(1, 0, 0),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.MonthlyCount
	for rows.Next() {
		var (
			month time.Time
			count int
		)
		if err := rows.Scan(&month, &count); err != nil {
			return nil, err
		}
		results = append(results, domain.MonthlyCount{
			Month:   int(month.Month()),
			Name:    month.Month().String(),
			Vessels: count,
		})
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSample(row scanner) (*domain.VesselSample, error) {
	var (
		s       domain.VesselSample
		heading sql.NullFloat64
	)
	if err := row.Scan(&s.VesselID, &s.Name, &s.Position.Lat, &s.Position.Lng, &heading, &s.Speed, &s.Destination, &s.Timestamp); err != nil {
		return nil, err
	}
	if heading.Valid {
		h := heading.Float64
		s.Heading = &h
	}
	return &s, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
