package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

type vesselService interface {
	GetLatest(ctx context.Context, vesselID string) (*domain.VesselSample, error)
	GetLive(ctx context.Context) ([]domain.VesselSample, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.VesselSample, error)
	GetAllVessels(ctx context.Context) ([]domain.Vessel, error)
	Untrack(ctx context.Context, vesselID string) error
	MonthlyStats(ctx context.Context, year int) ([]domain.MonthlyCount, error)
}

type positionResponse struct {
	VesselID    string   `json:"imo"`
	Name        string   `json:"name,omitempty"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Heading     *float64 `json:"heading,omitempty"`
	Speed       float64  `json:"speed"`
	Destination string   `json:"destination,omitempty"`
	Timestamp   int64    `json:"timestamp"`
}

type VesselHandler struct {
	vesselSvc vesselService
}

func NewVesselHandler(vesselSvc vesselService) *VesselHandler {
	return &VesselHandler{vesselSvc: vesselSvc}
}

func (h *VesselHandler) Register(r *gin.RouterGroup) {
	r.GET("/vessels", h.GetAllVessels)
	r.GET("/vessels/live", h.GetLive)
	r.GET("/vessels/stats", h.GetStats)
	r.GET("/vessels/:imo/position", h.GetLatestPosition)
	r.GET("/vessels/:imo/history", h.GetHistory)
	r.DELETE("/vessels/:imo", h.Untrack)
}

func (h *VesselHandler) GetAllVessels(c *gin.Context) {
	vessels, err := h.vesselSvc.GetAllVessels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch vessels"})
		return
	}

	if vessels == nil {
		vessels = []domain.Vessel{}
	}
	c.JSON(http.StatusOK, vessels)
}

func (h *VesselHandler) GetLive(c *gin.Context) {
	samples, err := h.vesselSvc.GetLive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch live positions"})
		return
	}

	c.JSON(http.StatusOK, toPositionResponses(samples))
}

func (h *VesselHandler) GetLatestPosition(c *gin.Context) {
	vesselID := c.Param("imo")

	s, err := h.vesselSvc.GetLatest(c.Request.Context(), vesselID)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "vessel not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch position"})
		return
	}

	c.JSON(http.StatusOK, toPositionResponse(s))
}

func (h *VesselHandler) GetHistory(c *gin.Context) {
	start, end, ok := parseWindow(c)
	if !ok {
		return
	}

	query := &domain.HistoryQuery{
		VesselID: c.Param("imo"),
		Start:    start,
		End:      end,
	}

	samples, err := h.vesselSvc.GetHistory(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, toPositionResponses(samples))
}

// GetStats counts reporting vessels per month of ?year=, defaulting to the
// current year.
func (h *VesselHandler) GetStats(c *gin.Context) {
	year := time.Now().UTC().Year()
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year parameter"})
			return
		}
		year = y
	}

	stats, err := h.vesselSvc.MonthlyStats(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "months": stats})
}

func (h *VesselHandler) Untrack(c *gin.Context) {
	if err := h.vesselSvc.Untrack(c.Request.Context(), c.Param("imo")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to untrack vessel"})
		return
	}
	c.Status(http.StatusNoContent)
}

// parseWindow reads the required start and end query parameters as unix
// seconds and writes a 400 response when either is missing or malformed.
func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return time.Time{}, time.Time{}, false
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return time.Time{}, time.Time{}, false
	}

	if end < start {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not be before start"})
		return time.Time{}, time.Time{}, false
	}
	return time.Unix(start, 0), time.Unix(end, 0), true
}

func toPositionResponses(samples []domain.VesselSample) []positionResponse {
	results := make([]positionResponse, len(samples))
	for i := range samples {
		results[i] = toPositionResponse(&samples[i])
	}
	return results
}

func toPositionResponse(s *domain.VesselSample) positionResponse {
	return positionResponse{
		VesselID:    s.VesselID,
		Name:        s.Name,
		Latitude:    s.Position.Lat,
		Longitude:   s.Position.Lng,
		Heading:     s.Heading,
		Speed:       s.Speed,
		Destination: s.Destination,
		Timestamp:   s.Timestamp.Unix(),
	}
}
