package main

import (
	"context"
	"fmt"

	"github.com/breezepoint/breezepoint-backend/pkg/config"
	"github.com/breezepoint/breezepoint-backend/pkg/kafka"
	"github.com/breezepoint/breezepoint-backend/pkg/logger"
	"github.com/breezepoint/breezepoint-backend/pkg/pubsub"
)

// message is the broker-neutral form of one outbox row.
type message struct {
	Topic      string
	Key        string
	Data       []byte
	Attributes map[string]string
}

type broker interface {
	Name() string
	Ping(ctx context.Context) error
	Publish(ctx context.Context, msg message) error
	Close() error
}

type pubsubBroker struct {
	client *pubsub.Client
}

func (b *pubsubBroker) Name() string { return config.EventingDriverPubSub }

func (b *pubsubBroker) Ping(ctx context.Context) error { return b.client.Ping(ctx) }

func (b *pubsubBroker) Publish(ctx context.Context, msg message) error {
	_, err := b.client.Publish(ctx, msg.Topic, msg.Data, msg.Attributes, msg.Key)
	return err
}

func (b *pubsubBroker) Close() error { return b.client.Close() }

type kafkaBroker struct {
	publisher *kafka.Publisher
}

func (b *kafkaBroker) Name() string { return config.EventingDriverKafka }

func (b *kafkaBroker) Ping(ctx context.Context) error { return b.publisher.Ping(ctx) }

func (b *kafkaBroker) Publish(ctx context.Context, msg message) error {
	return b.publisher.Publish(ctx, msg.Topic, msg.Key, msg.Data, msg.Attributes)
}

func (b *kafkaBroker) Close() error { return b.publisher.Close() }

// newBroker connects the configured eventing driver and returns it together
// with the topic assignment events are routed to.
func newBroker(ctx context.Context, cfg *config.Config, logg *logger.Logger) (broker, string, error) {
	switch cfg.Eventing.NormalizedDriver() {
	case config.EventingDriverPubSub:
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, "", fmt.Errorf("bootstrap pubsub: %w", err)
		}
		return &pubsubBroker{client: client}, cfg.PubSub.AssignmentsTopic, nil
	case config.EventingDriverKafka:
		publisher, err := kafka.NewPublisher(ctx, cfg.Kafka, logg)
		if err != nil {
			return nil, "", fmt.Errorf("bootstrap kafka: %w", err)
		}
		return &kafkaBroker{publisher: publisher}, cfg.Kafka.AssignmentsTopic, nil
	default:
		return nil, "", fmt.Errorf("unsupported eventing driver %q", cfg.Eventing.Driver)
	}
}
