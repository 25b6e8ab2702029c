package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

const ReservationEventsTopic = "reservation-events"

type Config struct {
	Addrs   []string      `envconfig:"KAFKA_ADDRS"`
	Timeout time.Duration `envconfig:"KAFKA_TIMEOUT" default:"5s"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Timeout = cfg.Timeout
	defaultCfg.Producer.Partitioner = sarama.NewHashPartitioner

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
