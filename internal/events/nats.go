package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/shopcore/internal/telemetry"
	"github.com/nats-io/nats.go"
)

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher JSON-encodes events and publishes them on core NATS subjects.
type NATSPublisher struct {
	nc      conn
	logger  *slog.Logger
	metrics *telemetry.BusinessMetrics
	now     func() time.Time
}

// NATSConfig configures the NATS connection.
type NATSConfig struct {
	URL           string
	Name          string
	Timeout       time.Duration
	MaxReconnects int
}

// ConnectNATS dials the server and returns a publisher on the connection.
func ConnectNATS(cfg NATSConfig, logger *slog.Logger, metrics *telemetry.BusinessMetrics) (*NATSPublisher, error) {
	if cfg.Name == "" {
		cfg.Name = "shopcore"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 60
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("Connected to NATS", "url", nc.ConnectedUrl())
	return newNATSPublisher(nc, logger, metrics), nil
}

func newNATSPublisher(nc conn, logger *slog.Logger, metrics *telemetry.BusinessMetrics) *NATSPublisher {
	return &NATSPublisher{nc: nc, logger: logger, metrics: metrics, now: time.Now}
}

// Publish wraps payload in an Envelope and publishes it on subject.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, data, err := encodeEnvelope(subject, payload, p.now())
	if err != nil {
		return err
	}

	err = p.nc.Publish(subject, data)
	p.metrics.RecordEventPublished(subject, err)
	if err != nil {
		p.logger.Error("Failed to publish event", "subject", subject, "error", err)
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	p.logger.Debug("Published event", "subject", subject, "bytes", len(data))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
