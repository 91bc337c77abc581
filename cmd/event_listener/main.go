package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nandanugg/vessel-geofence/config"
)

// Must match the names declared by the server's event publisher.
const (
	exchangeName = "fleet.events"
	queueName    = "geofence_events"
)

type eventMessage struct {
	ID            string `json:"id"`
	VesselID      string `json:"imo"`
	GeofenceID    string `json:"geofence_id"`
	GeofenceLabel string `json:"geofence_label"`
	Kind          string `json:"kind"`
	Position      struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"position"`
	Timestamp int64 `json:"timestamp"`
}

func main() {
	cfg := config.Load()

	conn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbitmq channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		log.Fatalf("declare exchange: %v", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Fatalf("declare queue: %v", err)
	}
	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		log.Fatalf("bind queue: %v", err)
	}

	msgs, err := ch.Consume(queueName, "", true, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	log.Printf("listening on queue=%s", queueName)

	go func() {
		for msg := range msgs {
			var ev eventMessage
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				log.Printf("skipping malformed event id=%s: %v", msg.MessageId, err)
				continue
			}
			fmt.Printf("[%s] %-5s vessel=%s geofence=%s (%s) at %.5f,%.5f\n",
				time.Unix(ev.Timestamp, 0).UTC().Format(time.RFC3339), ev.Kind, ev.VesselID,
				ev.GeofenceID, ev.GeofenceLabel, ev.Position.Latitude, ev.Position.Longitude)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("shutting down")
}
