package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolhub/feepay/pkg/config"
)

type stubWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

func TestNew_WithoutBrokersIsNoop(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.Brokers = []string{" ", ""}
	cfg.Kafka.Topic = "payment.events"

	p := New(cfg, zap.NewNop().Sugar())
	require.False(t, p.Enabled())
	require.NoError(t, p.PublishJSON(context.Background(), "k", map[string]string{"a": "b"}))
	require.NoError(t, p.Close())
}

func TestNew_WithBrokersBuildsWriter(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Kafka.Topic = "payment.events"

	p := New(cfg, zap.NewNop().Sugar())
	require.True(t, p.Enabled())
	w, ok := p.writer.(*kafkago.Writer)
	require.True(t, ok)
	require.Equal(t, "payment.events", w.Topic)
	require.True(t, w.Async)
	require.NoError(t, p.Close())
}

func TestPublishJSON(t *testing.T) {
	w := &stubWriter{}
	p := &Publisher{writer: w, topic: "payment.events", log: zap.NewNop().Sugar()}

	require.NoError(t, p.PublishJSON(context.Background(), "TXN1", map[string]any{"type": "payment.succeeded"}))
	require.Len(t, w.msgs, 1)
	require.Equal(t, "TXN1", string(w.msgs[0].Key))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &body))
	require.Equal(t, "payment.succeeded", body["type"])

	w.err = errors.New("leader not available")
	require.ErrorContains(t, p.PublishJSON(context.Background(), "TXN2", 1), "leader not available")

	require.NoError(t, p.Close())
	require.True(t, w.closed)
}
