package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/shopcore/internal/telemetry"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the Kafka writer. Each subject is published to the
// topic of the same name.
type KafkaConfig struct {
	Brokers      []string
	BatchTimeout time.Duration
}

// KafkaPublisher JSON-encodes events and writes them to Kafka topics.
type KafkaPublisher struct {
	w       messageWriter
	logger  *slog.Logger
	metrics *telemetry.BusinessMetrics
	now     func() time.Time
}

// NewKafkaPublisher builds a publisher over a writer for cfg.Brokers.
// The writer connects lazily on the first publish.
func NewKafkaPublisher(cfg KafkaConfig, logger *slog.Logger, metrics *telemetry.BusinessMetrics) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logger.Info("Kafka publisher configured", "brokers", cfg.Brokers)
	return newKafkaPublisher(w, logger, metrics), nil
}

func newKafkaPublisher(w messageWriter, logger *slog.Logger, metrics *telemetry.BusinessMetrics) *KafkaPublisher {
	return &KafkaPublisher{w: w, logger: logger, metrics: metrics, now: time.Now}
}

// Publish wraps payload in an Envelope and writes it to the subject's topic,
// keyed by the envelope id.
func (p *KafkaPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, data, err := encodeEnvelope(subject, payload, p.now())
	if err != nil {
		return err
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Topic: subject,
		Key:   []byte(id.String()),
		Value: data,
	})
	p.metrics.RecordEventPublished(subject, err)
	if err != nil {
		p.logger.Error("Failed to publish event", "topic", subject, "error", err)
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	p.logger.Debug("Published event", "topic", subject, "bytes", len(data))
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
