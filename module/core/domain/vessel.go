package domain

import "time"

// VesselSample is one AIS position report. VesselID is the IMO number.
type VesselSample struct {
	VesselID    string    `json:"imo"`
	Name        string    `json:"name,omitempty"`
	Position    LatLng    `json:"position"`
	Heading     *float64  `json:"heading,omitempty"`
	Speed       float64   `json:"speed"`
	Destination string    `json:"destination,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type Vessel struct {
	VesselID string `json:"imo"`
	Name     string `json:"name"`
}

type HistoryQuery struct {
	VesselID string
	Start    time.Time
	End      time.Time
}

// MonthlyCount is the number of distinct vessels that reported during a month.
type MonthlyCount struct {
	Month   int    `json:"month"`
	Name    string `json:"name"`
	Vessels int    `json:"vessels"`
}
