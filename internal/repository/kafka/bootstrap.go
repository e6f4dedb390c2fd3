package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BootstrapConsumer makes sure the topic exists before the consumer joins its group.
func BootstrapConsumer(ctx context.Context, cfg *ConsumerConfig, logger *zap.Logger) *Consumer {
	_ = EnsureTopic(ctx, cfg.Brokers, TopicSpec{
		Name:              cfg.Topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
		MaxWait:           5 * time.Second,
	}, logger)

	return NewConsumer(cfg).WithLogger(logger)
}

// BootstrapProducer makes sure the topic exists and returns a producer writing to it.
func BootstrapProducer(ctx context.Context, brokers []string, topic string, logger *zap.Logger) *Producer {
	_ = EnsureTopic(ctx, brokers, TopicSpec{
		Name:              topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
		MaxWait:           5 * time.Second,
	}, logger)

	return NewProducer(brokers, topic).WithLogger(logger)
}
