// Package kafka publishes portal notifications, approval and booking
// decisions among them, to the configured broker set.
package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"portal/config"
)

// Message is a key plus any JSON-encodable payload.
type Message struct {
	Key   string
	Value any
}

func (m *Message) ToKafkaMessage() (kafkaGo.Message, error) {
	encoded, err := json.Marshal(m.Value)
	if err != nil {
		log.Error().Err(err).Str("key", m.Key).Msg("failed to encode message payload")

		return kafkaGo.Message{}, fmt.Errorf("failed to encode message payload: %w", err)
	}

	return kafkaGo.Message{
		Key:   []byte(m.Key),
		Value: encoded,
	}, nil
}

// DecodeKafkaMessage unmarshals a raw broker message into a typed payload.
func DecodeKafkaMessage[T any](msg kafkaGo.Message) (Message, error) {
	var payload T

	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		log.Error().Err(err).Msg("failed to decode message payload")

		return Message{}, fmt.Errorf("failed to decode message payload: %w", err)
	}

	return Message{
		Key:   string(msg.Key),
		Value: payload,
	}, nil
}

type Client interface {
	SendMessages(ctx context.Context, topic string, messages ...Message) (err error)
	Consume(ctx context.Context, consumerGroup, topic string, handler func(message kafkaGo.Message))
	Reader(consumerGroup, topic string) *kafkaGo.Reader
}

type kafkaClientImpl struct {
	config    *config.Config
	dialer    *kafkaGo.Dialer
	transport *kafkaGo.Transport
	address   net.Addr
}

func New(config *config.Config) Client {
	mechanism := plain.Mechanism{
		Username: config.Kafka.SASL.Username,
		Password: config.Kafka.SASL.Password,
	}

	dialer := &kafkaGo.Dialer{
		DualStack:     true,
		SASLMechanism: mechanism,
	}

	transport := &kafkaGo.Transport{
		SASL: mechanism,
	}

	log.Info().Strs("brokers", config.Kafka.Brokers).Msg("kafka client initialized")

	return &kafkaClientImpl{
		config:    config,
		dialer:    dialer,
		transport: transport,
		address:   kafkaGo.TCP(config.Kafka.Brokers...),
	}
}

// Reader builds a consumer-group reader for a topic. An empty group name
// falls back to the configured default group.
func (k *kafkaClientImpl) Reader(consumerGroup, topic string) *kafkaGo.Reader {
	if topic == "" {
		log.Error().Msg("topic name cannot be empty when creating kafka reader")

		return nil
	}

	groupID := k.config.Kafka.ConsumerGroup
	if consumerGroup != "" {
		groupID = consumerGroup
	}

	return kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:     k.config.Kafka.Brokers,
		Topic:       topic,
		GroupID:     groupID,
		Dialer:      k.dialer,
		StartOffset: kafkaGo.FirstOffset,
	})
}

// SendMessages writes a batch to one topic. The writer is async, so a nil
// return means accepted, not delivered.
func (k *kafkaClientImpl) SendMessages(ctx context.Context, topic string, messages ...Message) (err error) {
	writer := &kafkaGo.Writer{
		Addr:                   k.address,
		Topic:                  topic,
		Transport:              k.transport,
		AllowAutoTopicCreation: true,
		Async:                  true,
	}

	batch := make([]kafkaGo.Message, 0, len(messages))

	for _, message := range messages {
		msg, err := message.ToKafkaMessage()
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("failed to build kafka message")

			return fmt.Errorf("failed to build kafka message: %w", err)
		}

		batch = append(batch, msg)
	}

	if err = writer.WriteMessages(ctx, batch...); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to publish to kafka")

		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	log.Info().Str("topic", topic).Int("count", len(batch)).Msg("published to kafka")

	return nil
}

// Consume reads a topic until the context is cancelled, dispatching each
// message to the handler on its own goroutine.
func (k *kafkaClientImpl) Consume(ctx context.Context, consumerGroup, topic string, handler func(message kafkaGo.Message)) {
	reader := k.Reader(consumerGroup, topic)
	if reader == nil {
		log.Error().Str("topic", topic).Msg("failed to create kafka reader")

		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("topic", topic).Msg("consumer context done")

			if err := reader.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close kafka reader")
			}

			return
		default:
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				log.Error().Err(err).Str("topic", topic).Msg("failed to read from kafka")

				continue
			}

			log.Info().Str("topic", topic).Str("key", string(msg.Key)).Msg("received kafka message")

			go handler(msg)
		}
	}
}
