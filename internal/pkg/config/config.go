// Package config loads the process configuration from the environment,
// applying defaults for optional values and failing fast on missing
// required ones so a misconfigured instance never starts serving.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the full runtime configuration of the orders service.
type Config struct {
	// HTTPAddr is the listen address of the HTTP API.
	HTTPAddr string

	// DBPath is the SQLite database file path.
	DBPath string

	// CatalogURL is the base URL of the product catalog service. Required.
	CatalogURL string

	// PaymentGatewayURL is the base URL of the payment gateway. Required.
	PaymentGatewayURL string

	// UpstreamTimeout bounds every catalog/gateway round trip.
	UpstreamTimeout time.Duration

	// RedisAddr enables the product snapshot cache when non-empty.
	RedisAddr string

	// KafkaBrokers enables the payment confirmation consumer when non-empty.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:          ":" + getEnv("PORT", "8080"),
		DBPath:            getEnv("DB_PATH", "./data/orders.db"),
		CatalogURL:        os.Getenv("CATALOG_SERVICE_URL"),
		PaymentGatewayURL: os.Getenv("PAYMENT_SERVICE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "payment.succeeded"),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "orders-service"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	timeout, err := time.ParseDuration(getEnv("UPSTREAM_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid UPSTREAM_TIMEOUT: %w", err)
	}
	cfg.UpstreamTimeout = timeout

	var missing []string
	if cfg.CatalogURL == "" {
		missing = append(missing, "CATALOG_SERVICE_URL")
	}
	if cfg.PaymentGatewayURL == "" {
		missing = append(missing, "PAYMENT_SERVICE_URL")
	}
	if len(missing) > 0 {
		return nil, errors.New("config: missing required env vars: " + strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
