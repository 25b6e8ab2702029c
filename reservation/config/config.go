package config

import (
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Astemirdum/equipment-reservation/pkg/auth"
	"github.com/Astemirdum/equipment-reservation/pkg/circuit_breaker"
	"github.com/Astemirdum/equipment-reservation/pkg/kafka"
	"github.com/Astemirdum/equipment-reservation/pkg/logger"
	"github.com/Astemirdum/equipment-reservation/pkg/postgres"
	"github.com/Astemirdum/equipment-reservation/pkg/redis"
)

type HTTPServer struct {
	Host         string        `envconfig:"RESERVATION_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `envconfig:"RESERVATION_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE" default:"10s"`
}

type Completer struct {
	// Interval of zero disables the sweep.
	Interval time.Duration `envconfig:"COMPLETER_INTERVAL" default:"0"`
	LockKey  string        `envconfig:"COMPLETER_LOCK_KEY" default:"reservation:complete-expired"`
	LockTTL  time.Duration `envconfig:"COMPLETER_LOCK_TTL" default:"1m"`
}

type Config struct {
	Server          HTTPServer
	Database        postgres.DB
	Log             logger.Log
	Kafka           kafka.Config
	CircuitBreaker  circuit_breaker.Config
	Redis           redis.Config
	Auth            auth.Config
	Completer       Completer
	SuperadminEmail string `envconfig:"SUPERADMIN_EMAIL"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options are applied on top.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		if err := envconfig.Process("", &config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		cfg = &config
	})

	return cfg
}
