package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Gateway driver names.
const (
	DriverBridge = "bridge"
	DriverSim    = "sim"
)

// Config keeps the runtime configuration for the relay.
type Config struct {
	Env     string `envconfig:"APP_ENV" default:"development"`
	HTTP    HTTPConfig
	Gateway GatewayConfig
	Redis   RedisConfig
	AMQP    AMQPConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port int    `envconfig:"HTTP_PORT" default:"5000"`
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// GatewayConfig selects and parameterizes the terminal gateway driver.
type GatewayConfig struct {
	Driver      string        `envconfig:"GATEWAY_DRIVER" default:"bridge"`
	BridgeURL   string        `envconfig:"BRIDGE_URL" default:"http://127.0.0.1:6542"`
	BridgeToken string        `envconfig:"BRIDGE_TOKEN"`
	CallTimeout time.Duration `envconfig:"GATEWAY_CALL_TIMEOUT" default:"30s"`
}

// RedisConfig stores connection parameters for the optional registry mirror.
// An empty Addr disables the mirror.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// AMQPConfig stores parameters for the optional execution event publisher.
// An empty URL disables publishing.
type AMQPConfig struct {
	URL      string `envconfig:"RABBITMQ_URL"`
	Exchange string `envconfig:"RABBITMQ_EXECUTIONS_EXCHANGE" default:"relay.executions"`
}

// Load builds Config from environment variables, reading a .env file first
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if cfg.Gateway.Driver != DriverBridge && cfg.Gateway.Driver != DriverSim {
		return nil, fmt.Errorf("unknown gateway driver %q", cfg.Gateway.Driver)
	}
	return &cfg, nil
}
