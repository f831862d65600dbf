package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/schoolhub/feepay/pkg/config"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes JSON messages to one topic. With no brokers configured it
// drops everything.
type Publisher struct {
	writer messageWriter
	topic  string
	log    *zap.SugaredLogger
}

func New(cfg *config.Config, log *zap.SugaredLogger) *Publisher {
	brokers := make([]string, 0, len(cfg.Kafka.Brokers))
	for _, b := range cfg.Kafka.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	p := &Publisher{topic: cfg.Kafka.Topic, log: log}
	if len(brokers) == 0 {
		log.Warn("no kafka brokers configured, payment events are not published")
		return p
	}
	p.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        cfg.Kafka.Topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: 10 * time.Second,
		Async:        true,
		Completion: func(messages []kafkago.Message, err error) {
			if err != nil {
				log.Errorw("failed to deliver kafka messages", "topic", cfg.Kafka.Topic, "count", len(messages), "error", err)
			}
		},
	}
	log.Infow("kafka publisher initialized", "brokers", brokers, "topic", cfg.Kafka.Topic)
	return p
}

func (p *Publisher) Enabled() bool { return p != nil && p.writer != nil }

// PublishJSON marshals value and writes it keyed by key.
func (p *Publisher) PublishJSON(ctx context.Context, key string, value any) error {
	if !p.Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal kafka message: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafkago.Message{Key: []byte(key), Value: payload}); err != nil {
		return fmt.Errorf("failed to write kafka message to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}

func register(lc fx.Lifecycle, p *Publisher) {
	lc.Append(fx.StopHook(p.Close))
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(register),
)
