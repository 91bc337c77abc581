package config

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

const probeTimeout = 2 * time.Second

type probe struct {
	name  string
	check func(ctx context.Context) error
}

// HealthChecker reports the state of every backing service plus the
// tracker counters supplied through WithStats.
type HealthChecker struct {
	probes []probe
	stats  func() gin.H
}

func NewHealthChecker(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, rdb *redis.Client) *HealthChecker {
	return newHealthChecker(
		probe{"postgres", db.PingContext},
		probe{"rabbitmq", func(context.Context) error {
			if amqpConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}},
		probe{"mqtt", func(context.Context) error {
			if !mqttClient.IsConnected() {
				return errors.New("not connected")
			}
			return nil
		}},
		probe{"redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}},
	)
}

func newHealthChecker(probes ...probe) *HealthChecker {
	return &HealthChecker{probes: probes}
}

func (h *HealthChecker) WithStats(stats func() gin.H) *HealthChecker {
	h.stats = stats
	return h
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for _, p := range h.probes {
		if err := p.check(ctx); err != nil {
			deps[p.name] = gin.H{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
			continue
		}
		deps[p.name] = gin.H{"status": "up"}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	body := gin.H{
		"status":       overall,
		"dependencies": deps,
	}
	if h.stats != nil {
		body["tracker"] = h.stats()
	}
	c.JSON(status, body)
}
