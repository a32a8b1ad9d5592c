package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"taskboard/internal/config"
	"taskboard/internal/models"
	"taskboard/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// EnsureTopic creates the activity topic with configured partitions (idempotent).
// Call at startup; if it fails (e.g. no broker or topic exists), app still runs.
func EnsureTopic(ctx context.Context, cfg *config.Config) {
	if !cfg.KafkaEnabled() {
		return
	}
	conn, err := kafka.DialContext(ctx, "tcp", cfg.KafkaBrokers[0])
	if err != nil {
		logger.Debug(ctx, "Kafka dial for topic creation failed", "error", err)
		return
	}
	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		logger.Debug(ctx, "Kafka controller lookup failed", "error", err)
		return
	}
	ctrlConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		logger.Debug(ctx, "Kafka controller dial failed", "error", err)
		return
	}
	defer ctrlConn.Close()
	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.KafkaTopic,
		NumPartitions:     cfg.KafkaPartitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug(ctx, "Kafka create topic failed (topic may already exist)", "error", err)
		return
	}
	logger.Info(ctx, "Kafka topic ensured", "topic", cfg.KafkaTopic, "partitions", cfg.KafkaPartitions)
}

// Publisher sends activity log entries to Kafka. A Publisher built without
// brokers drops every entry.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns a publisher for cfg. Writes are async; delivery errors
// are logged by the writer's completion callback.
func NewPublisher(ctx context.Context, cfg *config.Config) *Publisher {
	if !cfg.KafkaEnabled() {
		logger.Info(ctx, "Activity publishing disabled (no Kafka brokers)")
		return &Publisher{}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 0,
		Async:        true,
		RequiredAcks: kafka.RequireOne,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error(context.Background(), "Activity publish failed", "error", err, "count", len(messages))
			}
		},
	}
	logger.Info(ctx, "Kafka producer initialized", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	return &Publisher{writer: w}
}

// PublishActivity enqueues entry keyed by user so one user's events stay ordered.
func (p *Publisher) PublishActivity(ctx context.Context, entry models.ActivityLogEntry) error {
	if p == nil || p.writer == nil {
		return nil
	}
	msg, err := activityMessage(entry)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func activityMessage(entry models.ActivityLogEntry) (kafka.Message, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(entry.UserID),
		Value: payload,
		Time:  entry.Timestamp,
	}, nil
}
