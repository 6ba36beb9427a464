// Package messaging consumes interaction events from Kafka and appends them
// to the interaction store, so the next snapshot rebuild picks them up.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/shopstream/recommender/internal/config"
	"github.com/shopstream/recommender/internal/store"
	"github.com/shopstream/recommender/pkg/models"
)

// InteractionMessage is the wire format of one interaction event on the
// topic.
type InteractionMessage struct {
	Interaction models.Interaction `json:"interaction"`
	Timestamp   time.Time          `json:"timestamp"`
	RetryCount  int                `json:"retry_count"`
}

type KafkaProducer struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

type KafkaConsumer struct {
	reader *kafka.Reader
	logger *logrus.Logger
}

// MessageBus ties the interaction topic to the interaction store.
type MessageBus struct {
	producer *KafkaProducer
	consumer *KafkaConsumer
	appender store.InteractionAppender
	logger   *logrus.Logger
}

func NewMessageBus(cfg *config.Config, appender store.InteractionAppender, logger *logrus.Logger) (*MessageBus, error) {
	producer := &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.Topic,
			Balancer:     &kafka.Hash{}, // Key by user so one user's events stay ordered
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		logger: logger,
	}

	consumer := &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          cfg.Kafka.Topic,
			GroupID:        cfg.Kafka.GroupID,
			MinBytes:       10e3,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		}),
		logger: logger,
	}

	return &MessageBus{
		producer: producer,
		consumer: consumer,
		appender: appender,
		logger:   logger,
	}, nil
}

// PublishInteraction puts one interaction event on the topic.
func (mb *MessageBus) PublishInteraction(event models.Interaction) error {
	message := InteractionMessage{
		Interaction: event,
		Timestamp:   time.Now(),
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction message: %w", err)
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(event.UserID),
		Value: messageBytes,
		Headers: []kafka.Header{
			{Key: "user_id", Value: []byte(event.UserID)},
			{Key: "product_id", Value: []byte(event.ProductID)},
			{Key: "timestamp", Value: []byte(message.Timestamp.Format(time.RFC3339))},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mb.producer.writer.WriteMessages(ctx, kafkaMessage); err != nil {
		mb.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":    event.UserID,
			"product_id": event.ProductID,
		}).Error("Failed to publish interaction to Kafka")
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	return nil
}

// Consume reads interaction events until the context is cancelled, appending
// each to the store. Bad payloads are logged and skipped; store failures
// drop the event after logging, since the topic retains the authoritative
// copy.
func (mb *MessageBus) Consume(ctx context.Context) error {
	for {
		message, err := mb.consumer.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			mb.logger.WithError(err).Error("Failed to read message from Kafka")
			continue
		}

		var im InteractionMessage
		if err := json.Unmarshal(message.Value, &im); err != nil {
			mb.logger.WithError(err).WithFields(logrus.Fields{
				"partition": message.Partition,
				"offset":    message.Offset,
			}).Error("Failed to unmarshal interaction message")
			continue
		}

		if err := mb.appender.AppendInteraction(ctx, im.Interaction); err != nil {
			mb.logger.WithError(err).WithFields(logrus.Fields{
				"user_id":    im.Interaction.UserID,
				"product_id": im.Interaction.ProductID,
			}).Error("Failed to append interaction")
			continue
		}

		mb.logger.WithFields(logrus.Fields{
			"user_id":    im.Interaction.UserID,
			"product_id": im.Interaction.ProductID,
			"type":       im.Interaction.InteractionType,
		}).Debug("Interaction appended")
	}
}

func (mb *MessageBus) Close() error {
	var firstErr error
	if err := mb.producer.writer.Close(); err != nil {
		firstErr = err
	}
	if err := mb.consumer.reader.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
