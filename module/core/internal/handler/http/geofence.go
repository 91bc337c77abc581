package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/vessel-geofence/module/core/domain"
)

type geofenceService interface {
	Register(ctx context.Context, gf domain.Geofence) error
	Replace(ctx context.Context, gf domain.Geofence) error
	Deregister(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (domain.Geofence, error)
	List(ctx context.Context) []domain.Geofence
	Events(ctx context.Context, query *domain.EventQuery) ([]domain.GeofenceEvent, error)
	Occupants(ctx context.Context, id string) ([]string, error)
	VesselGeofences(ctx context.Context, vesselID string) []domain.Geofence
}

type occupancyResponse struct {
	GeofenceID string   `json:"geofence_id"`
	Vessels    []string `json:"vessels"`
}

type GeofenceHandler struct {
	geofenceSvc geofenceService
}

func NewGeofenceHandler(geofenceSvc geofenceService) *GeofenceHandler {
	return &GeofenceHandler{geofenceSvc: geofenceSvc}
}

func (h *GeofenceHandler) Register(r *gin.RouterGroup) {
	r.GET("/geofences", h.List)
	r.POST("/geofences", h.Create)
	r.GET("/geofences/:id", h.Get)
	r.PUT("/geofences/:id", h.Replace)
	r.DELETE("/geofences/:id", h.Delete)
	r.GET("/geofences/:id/events", h.GeofenceEvents)
	r.GET("/geofences/:id/vessels", h.Occupants)
	r.GET("/vessels/:imo/events", h.VesselEvents)
	r.GET("/vessels/:imo/geofences", h.VesselGeofences)
}

func (h *GeofenceHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.geofenceSvc.List(c.Request.Context()))
}

func (h *GeofenceHandler) Get(c *gin.Context) {
	gf, err := h.geofenceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeGeofenceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gf)
}

func (h *GeofenceHandler) Create(c *gin.Context) {
	var gf domain.Geofence
	if err := c.ShouldBindJSON(&gf); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.geofenceSvc.Register(c.Request.Context(), gf); err != nil {
		writeGeofenceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gf)
}

func (h *GeofenceHandler) Replace(c *gin.Context) {
	var gf domain.Geofence
	if err := c.ShouldBindJSON(&gf); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	gf.ID = c.Param("id")

	if err := h.geofenceSvc.Replace(c.Request.Context(), gf); err != nil {
		writeGeofenceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gf)
}

func (h *GeofenceHandler) Delete(c *gin.Context) {
	if err := h.geofenceSvc.Deregister(c.Request.Context(), c.Param("id")); err != nil {
		writeGeofenceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GeofenceHandler) Occupants(c *gin.Context) {
	id := c.Param("id")
	vessels, err := h.geofenceSvc.Occupants(c.Request.Context(), id)
	if err != nil {
		writeGeofenceError(c, err)
		return
	}

	if vessels == nil {
		vessels = []string{}
	}
	c.JSON(http.StatusOK, occupancyResponse{GeofenceID: id, Vessels: vessels})
}

func (h *GeofenceHandler) VesselGeofences(c *gin.Context) {
	fences := h.geofenceSvc.VesselGeofences(c.Request.Context(), c.Param("imo"))
	if fences == nil {
		fences = []domain.Geofence{}
	}
	c.JSON(http.StatusOK, fences)
}

func (h *GeofenceHandler) GeofenceEvents(c *gin.Context) {
	h.events(c, &domain.EventQuery{GeofenceID: c.Param("id")})
}

func (h *GeofenceHandler) VesselEvents(c *gin.Context) {
	h.events(c, &domain.EventQuery{VesselID: c.Param("imo")})
}

func (h *GeofenceHandler) events(c *gin.Context, query *domain.EventQuery) {
	start, end, ok := parseWindow(c)
	if !ok {
		return
	}
	query.Start, query.End = start, end

	events, err := h.geofenceSvc.Events(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch events"})
		return
	}

	if events == nil {
		events = []domain.GeofenceEvent{}
	}
	c.JSON(http.StatusOK, events)
}

func writeGeofenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidGeofence):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateID):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "geofence not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "geofence operation failed"})
	}
}
