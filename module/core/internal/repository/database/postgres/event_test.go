package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

func TestEventInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	mock.ExpectExec(`INSERT INTO geofence_events .+ ON CONFLICT \(id\) DO NOTHING`).
		WithArgs("e1", "9321483", "port-A", "Port A", "ENTER", 1.0, 103.0, ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewEventRepo(db)
	err = repo.Insert(context.Background(), &domain.GeofenceEvent{
		ID:            "e1",
		VesselID:      "9321483",
		GeofenceID:    "port-A",
		GeofenceLabel: "Port A",
		Kind:          domain.GeofenceEnter,
		Position:      domain.LatLng{Lat: 1.0, Lng: 103.0},
		Timestamp:     ts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEventFind(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	start := time.Unix(1715000000, 0)
	end := time.Unix(1715009999, 0)
	rows := sqlmock.NewRows([]string{"id", "vessel_id", "geofence_id", "geofence_label", "kind", "latitude", "longitude", "timestamp"}).
		AddRow("e1", "9321483", "port-A", "Port A", "ENTER", 1.0, 103.0, time.Unix(1715000100, 0)).
		AddRow("e2", "9321483", "port-A", "Port A", "EXIT", 1.1, 103.0, time.Unix(1715000900, 0))
	mock.ExpectQuery(`SELECT .+ FROM geofence_events`).
		WithArgs("9321483", "", start, end).
		WillReturnRows(rows)

	repo := NewEventRepo(db)
	events, err := repo.Find(context.Background(), &domain.EventQuery{
		VesselID: "9321483",
		Start:    start,
		End:      end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != domain.GeofenceEnter || events[1].Kind != domain.GeofenceExit {
		t.Errorf("unexpected kinds: %s, %s", events[0].Kind, events[1].Kind)
	}
}
