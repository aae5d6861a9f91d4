package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/crimecast/crimecast/internal/config"
	"github.com/crimecast/crimecast/internal/utils"
)

// NewPublisher creates a Publisher based on configuration.
// Publishing is disabled when no type is configured.
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	queueType := utils.QueueType(strings.ToLower(cfg.Type))

	switch queueType {
	case utils.QueueTypeNone, "":
		return newNoopPublisher(), nil

	case utils.QueueTypeNATS:
		return newNATSQueue(NATSConfig{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
		})

	case utils.QueueTypeRedis:
		return newRedisPublisher(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
		})

	case utils.QueueTypeKafka:
		return newKafkaPublisher(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
		})

	case utils.QueueTypeMemory:
		return newMemoryQueue(), nil

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: none, nats, redis, kafka, memory)", queueType)
	}
}

// NewSubscriber creates a Subscriber for the brokers that support
// push delivery to this process
func NewSubscriber(cfg config.EventsConfig) (Subscriber, error) {
	switch utils.QueueType(strings.ToLower(cfg.Type)) {
	case utils.QueueTypeNATS:
		return newNATSQueue(NATSConfig{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
		})
	case utils.QueueTypeMemory:
		return newMemoryQueue(), nil
	default:
		return nil, fmt.Errorf("subscribing is not supported for queue type: %s (supported: nats, memory)", cfg.Type)
	}
}

type noopPublisher struct{}

func newNoopPublisher() *noopPublisher {
	return &noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
