package events

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Astemirdum/equipment-reservation/pkg/circuit_breaker"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/metrics"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

// Publisher sends reservation events to Kafka. Failures are logged and
// dropped: the state change they describe has already been committed.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, topic string, cb circuit_breaker.CircuitBreaker, m *metrics.Metrics, log *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		cb:       cb,
		metrics:  m,
		log:      log.Named("events"),
	}
}

func (p *Publisher) Publish(_ context.Context, event model.ReservationEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("marshal event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.ReservationID),
		Value: sarama.ByteEncoder(data),
	}
	err = p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
	p.metrics.Published(err)
	if err != nil {
		p.log.Warn("publish event",
			zap.String("type", string(event.Type)),
			zap.String("reservation", event.ReservationID),
			zap.Error(err))
	}
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
