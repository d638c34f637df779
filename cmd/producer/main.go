package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/javierturcios2607/Proyecto-Tifon/internal/config"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/logger"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/rabbitmq"
)

var productIDs = []string{"PROD-A", "PROD-B", "PROD-C", "PROD-D", "PROD-E"}

type adEventPayload struct {
	EventID        string  `json:"event_id"`
	UserID         string  `json:"user_id"`
	EventType      string  `json:"event_type"`
	ProductID      string  `json:"product_id"`
	EventTimestamp float64 `json:"event_timestamp"`
	Revenue        float64 `json:"revenue"`
}

// pickEventType draws an event type with realistic traffic weights:
// impressions dominate, conversions are rare.
func pickEventType() string {
	r := rand.Float64()
	switch {
	case r < 0.80:
		return "impression"
	case r < 0.95:
		return "click"
	default:
		return "conversion"
	}
}

func newEvent() adEventPayload {
	eventType := pickEventType()

	revenue := 0.0
	if eventType == "click" {
		revenue = 0.01 + rand.Float64()*1.49
	}

	return adEventPayload{
		EventID:        uuid.NewString(),
		UserID:         fmt.Sprintf("user_%d", 100+rand.Intn(900)),
		EventType:      eventType,
		ProductID:      productIDs[rand.Intn(len(productIDs))],
		EventTimestamp: float64(time.Now().UnixNano()) / 1e9,
		Revenue:        revenue,
	}
}

func main() {
	_ = godotenv.Load()

	if err := logger.Init(os.Getenv("LOG_LEVEL")); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	var missing []string
	get := func(key string) string {
		val := os.Getenv(key)
		if val == "" {
			missing = append(missing, key)
		}
		return val
	}

	rmqCfg := config.LoadRabbitMQ(get)
	if len(missing) > 0 {
		logger.Fatal("Missing required environment variables",
			zap.Strings("keys", missing),
		)
	}

	queue := os.Getenv("EVENTS_QUEUE")
	if queue == "" {
		queue = "ad-events"
	}

	conn := rabbitmq.NewConnection(&rmqCfg, logger.Logger)
	if err := conn.Connect(); err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()

	interval := time.Second
	if raw := os.Getenv("PRODUCER_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			interval = parsed
		}
	}

	logger.Info("Producer started",
		zap.String("queue", queue),
		zap.Duration("interval", interval),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var published int
	for {
		select {
		case <-quit:
			logger.Info("Producer stopped",
				zap.Int("events_published", published),
			)
			return
		case <-ticker.C:
			evt := newEvent()
			body, err := json.Marshal(evt)
			if err != nil {
				logger.Error("Failed to marshal event", zap.Error(err))
				continue
			}

			if err := conn.PublishMessage("", queue, body); err != nil {
				logger.Error("Failed to publish event",
					zap.String("event_id", evt.EventID),
					zap.Error(err),
				)
				continue
			}

			published++
			logger.Debug("Published event",
				zap.String("event_id", evt.EventID),
				zap.String("user_id", evt.UserID),
				zap.String("event_type", evt.EventType),
			)
		}
	}
}
