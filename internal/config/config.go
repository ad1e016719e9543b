package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment-driven settings for the service.
type Config struct {
	Port              string `envconfig:"PORT" default:"8080"`
	DatabaseURL       string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret         string `envconfig:"JWT_SECRET" required:"true"`
	AllowedOrigins    string `envconfig:"ALLOWED_ORIGINS" default:""`
	KafkaBrokers      string `envconfig:"KAFKA_BROKERS" default:""`
	StockEventsTopic  string `envconfig:"STOCK_EVENTS_TOPIC" default:"stock-events"`
	LowStockThreshold int    `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
