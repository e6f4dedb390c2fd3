package send_modes_config

import (
	"time"

	"github.com/NordCoder/SendModes/internal/obs"
	kafkax "github.com/NordCoder/SendModes/internal/repository/kafka"
	"github.com/NordCoder/SendModes/internal/outbox"
	pginfra "github.com/NordCoder/SendModes/internal/repository/postgres"
	redisinfra "github.com/NordCoder/SendModes/internal/repository/redis"
	"github.com/NordCoder/SendModes/internal/transport/httpexec"
)

type App struct {
	Name    string `mapstructure:"name" validate:"required"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

type Server struct {
	MetricsAddr     string        `mapstructure:"metrics_addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// Endpoint is the base URL of a remote service, e.g. http://send-modes:8080.
type Endpoint struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

type HTTP struct {
	AttemptTimeout time.Duration         `mapstructure:"attempt_timeout" validate:"gt=0"`
	RetryInterval  time.Duration         `mapstructure:"retry_interval" validate:"gte=0"`
	MaxAttempts    int                   `mapstructure:"max_attempts" validate:"gte=1"`
	Client         httpexec.ClientConfig `mapstructure:",squash"`
}

type KafkaOut struct {
	Brokers []string `mapstructure:"brokers" validate:"required,min=1"`
	Topic   string   `mapstructure:"topic" validate:"required"`
}

type Heartbeat struct {
	Enable      bool          `mapstructure:"enable"`
	AggregateID string        `mapstructure:"aggregate_id" validate:"required_if=Enable true"`
	Resync      time.Duration `mapstructure:"resync" validate:"gte=0"`
}

type Config struct {
	App         App                   `mapstructure:"app"`
	Log         Log                   `mapstructure:"log"`
	OTEL        obs.OTELConfig        `mapstructure:"otel"`
	Server      Server                `mapstructure:"server"`
	DB          pginfra.Config        `mapstructure:"db"`
	Redis       redisinfra.Config     `mapstructure:"redis"`
	SendMode    Endpoint              `mapstructure:"send_mode"`
	SendModeAPI Endpoint              `mapstructure:"send_mode_api"`
	HTTP        HTTP                  `mapstructure:"http"`
	KafkaIn     kafkax.ConsumerConfig `mapstructure:"kafka_in"`
	KafkaSendIn kafkax.ConsumerConfig `mapstructure:"kafka_send_in"`
	KafkaOut    KafkaOut              `mapstructure:"kafka_out"`
	Heartbeat   Heartbeat             `mapstructure:"heartbeat"`
	Outbox      outbox.Config         `mapstructure:"outbox"`
}

func (c *Config) LogConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}
