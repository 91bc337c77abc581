package logger

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

func TestPublishEvent(t *testing.T) {
	tests := []struct {
		kind domain.GeofenceEventKind
		verb string
	}{
		{domain.GeofenceEnter, "entered"},
		{domain.GeofenceExit, "left"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var buf bytes.Buffer
			p := NewEventPublisher(log.New(&buf, "", 0))

			err := p.PublishEvent(context.Background(), &domain.GeofenceEvent{
				VesselID:      "9321483",
				GeofenceID:    "port-A",
				GeofenceLabel: "Port A",
				Kind:          tt.kind,
				Timestamp:     time.Unix(1715003456, 0),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			line := buf.String()
			if !strings.Contains(line, "vessel=9321483 "+tt.verb+" geofence=port-A") {
				t.Errorf("unexpected line: %s", line)
			}
		})
	}
}
