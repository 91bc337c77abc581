package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/vessel-geofence/config"
	"github.com/nandanugg/vessel-geofence/module/core"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg := config.Load()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	rdb, err := config.NewRedis(cfg)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer func() { _ = rdb.Close() }()

	kafkaWriter := config.NewKafkaWriter(cfg)
	if kafkaWriter != nil {
		defer func() { _ = kafkaWriter.Close() }()
	}

	seed, err := config.LoadGeofences(cfg.GeofencesFile)
	if err != nil {
		log.Fatalf("geofences: %v", err)
	}

	coreModule, err := core.Build(db, amqpConn, mqttClient, rdb, kafkaWriter, core.Options{
		SinkBuffer:  cfg.SinkBuffer,
		PositionTTL: cfg.PositionTTL,
	})
	if err != nil {
		log.Fatalf("core module: %v", err)
	}
	defer coreModule.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = coreModule.Restore(ctx, seed)
	cancel()
	if err != nil {
		log.Fatalf("restore geofences: %v", err)
	}
	log.Printf("monitoring %d geofences", len(coreModule.Registry.List()))

	if err := coreModule.StartSubscribers(); err != nil {
		log.Fatalf("start subscribers: %v", err)
	}

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient, rdb).WithStats(coreModule.Stats)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	log.Printf("listening on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
