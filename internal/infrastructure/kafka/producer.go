package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	skafka "github.com/segmentio/kafka-go"

	"github.com/jhoicas/Facturas-api/internal/application/billing"
	"github.com/jhoicas/Facturas-api/pkg/config"
)

var _ billing.EventPublisher = (*Producer)(nil)

// Writer subconjunto de kafka.Writer que usa el productor; permite inyectar un fake en tests.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Producer publica eventos de facturas en un tópico Kafka.
type Producer struct {
	writer Writer
}

// NewProducer crea un productor real hacia el broker y tópico configurados.
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &skafka.Writer{
		Addr:         skafka.TCP(cfg.Broker),
		Topic:        cfg.Topic,
		Balancer:     &skafka.Hash{},
		RequiredAcks: skafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: w}
}

// NewProducerWithWriter permite inyectar un writer de prueba.
func NewProducerWithWriter(w Writer) *Producer {
	return &Producer{writer: w}
}

// Publish serializa value a JSON y lo escribe con la clave dada (el ID de la factura).
func (p *Producer) Publish(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal kafka value: %w", err)
	}
	msg := skafka.Message{Key: []byte(key), Value: b, Time: time.Now()}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close cierra el writer subyacente.
func (p *Producer) Close() error {
	return p.writer.Close()
}
