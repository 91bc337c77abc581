package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type positionMessage struct {
	VesselID    string  `json:"imo"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Heading     float64 `json:"heading"`
	Speed       float64 `json:"speed"`
	Destination string  `json:"destination"`
	Timestamp   int64   `json:"timestamp"`
}

type mockVessel struct {
	imo     string
	name    string
	lat     float64
	lon     float64
	heading float64
	speed   float64 // knots
}

// vessels steam around this anchorage so some of them cross the default seed geofence
const (
	anchorLat = 1.0
	anchorLon = 103.0

	metersPerDegree = 111320.0
	knotToMS        = 0.514444
)

func randomIMO() string {
	return fmt.Sprintf("9%06d", rand.Intn(1000000))
}

func newFleet(n int) []*mockVessel {
	fleet := make([]*mockVessel, n)
	for i := range fleet {
		fleet[i] = &mockVessel{
			imo:     randomIMO(),
			name:    fmt.Sprintf("MOCK VESSEL %d", i+1),
			lat:     anchorLat + (rand.Float64()-0.5)*0.2, // ~11km spread
			lon:     anchorLon + (rand.Float64()-0.5)*0.2,
			heading: rand.Float64() * 360,
			speed:   5 + rand.Float64()*15,
		}
	}
	return fleet
}

func (v *mockVessel) step(d time.Duration) {
	// drift the heading a little and steer back once the vessel strays too far
	v.heading = math.Mod(v.heading+(rand.Float64()-0.5)*20+360, 360)
	if math.Hypot(v.lat-anchorLat, v.lon-anchorLon) > 0.15 {
		v.heading = math.Mod(math.Atan2(anchorLon-v.lon, anchorLat-v.lat)*180/math.Pi+360, 360)
	}

	dist := v.speed * knotToMS * d.Seconds()
	rad := v.heading * math.Pi / 180
	v.lat += dist * math.Cos(rad) / metersPerDegree
	v.lon += dist * math.Sin(rad) / (metersPerDegree * math.Cos(v.lat*math.Pi/180))
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}
	interval := time.Duration(intervalSec) * time.Second

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("vessel-mock-publisher")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	fleet := newFleet(5)
	imos := make([]string, len(fleet))
	for i, v := range fleet {
		imos[i] = v.imo
	}

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)
	log.Printf("fleet: %v", imos)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		for _, v := range fleet {
			v.step(interval)

			msg := positionMessage{
				VesselID:    v.imo,
				Name:        v.name,
				Latitude:    v.lat,
				Longitude:   v.lon,
				Heading:     math.Floor(v.heading),
				Speed:       math.Round(v.speed*10) / 10,
				Destination: "SGSIN",
				Timestamp:   time.Now().Unix(),
			}

			payload, _ := json.Marshal(msg)
			topic := fmt.Sprintf("/fleet/vessel/%s/position", v.imo)

			token := client.Publish(topic, 1, false, payload)
			token.Wait()

			log.Printf("published to %s: %s", topic, payload)
		}
	}
}
