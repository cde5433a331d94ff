package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dukerupert/shopcore/internal/telemetry"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	fw := &fakeWriter{}
	metrics := telemetry.NewBusinessMetrics(prometheus.NewRegistry(), "test")
	p := newKafkaPublisher(fw, testLogger(), metrics)

	err := p.Publish(context.Background(), SubjectCartItemAdded, CartItemAdded{
		ProductID:   4,
		ProductName: "Yoga Mat",
		Quantity:    2,
		Size:        "M",
	})
	require.NoError(t, err)
	require.Len(t, fw.messages, 1)

	msg := fw.messages[0]
	assert.Equal(t, SubjectCartItemAdded, msg.Topic)

	var got struct {
		ID   uuid.UUID     `json:"id"`
		Data CartItemAdded `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, got.ID.String(), string(msg.Key))
	assert.Equal(t, 4, got.Data.ProductID)
	assert.Equal(t, "M", got.Data.Size)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(SubjectCartItemAdded, telemetry.ResultSuccess)))
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("leader not available")}
	metrics := telemetry.NewBusinessMetrics(prometheus.NewRegistry(), "test")
	p := newKafkaPublisher(fw, testLogger(), metrics)

	err := p.Publish(context.Background(), SubjectOrderPlaced, OrderPlaced{OrderID: "ORD-100001"})
	assert.ErrorIs(t, err, fw.err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(SubjectOrderPlaced, telemetry.ResultError)))
}

func TestKafkaPublisher_CancelledContext(t *testing.T) {
	fw := &fakeWriter{}
	p := newKafkaPublisher(fw, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Publish(ctx, SubjectOrderPlaced, OrderPlaced{}), context.Canceled)
	assert.Empty(t, fw.messages)
}

func TestKafkaPublisher_Close(t *testing.T) {
	fw := &fakeWriter{}
	p := newKafkaPublisher(fw, testLogger(), nil)
	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaConfig{}, testLogger(), nil)
	assert.Error(t, err)

	p, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"127.0.0.1:9092"}}, testLogger(), nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
}
