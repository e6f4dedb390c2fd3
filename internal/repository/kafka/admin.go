package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	errNoBrokers      = errors.New("kafka: no brokers configured")
	errTopicNotReady  = errors.New("kafka: topic has no partitions")
	topicPollInterval = 200 * time.Millisecond
)

type TopicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	MaxWait           time.Duration
}

func (s TopicSpec) withDefaults() TopicSpec {
	if s.NumPartitions <= 0 {
		s.NumPartitions = 1
	}
	if s.ReplicationFactor <= 0 {
		s.ReplicationFactor = 1
	}
	if s.MaxWait <= 0 {
		s.MaxWait = 5 * time.Second
	}
	return s
}

// EnsureTopic creates the topic through the cluster controller and waits until
// its partitions are visible. An existing topic is not an error.
func EnsureTopic(ctx context.Context, brokers []string, spec TopicSpec, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	spec = spec.withDefaults()
	if len(brokers) == 0 {
		return errNoBrokers
	}
	log = log.With(zap.String("topic", spec.Name))

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		log.Warn("kafka dial failed", zap.String("broker", brokers[0]), zap.Error(err))
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		log.Warn("kafka controller lookup failed", zap.Error(err))
		return err
	}
	cc, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		log.Warn("kafka controller dial failed", zap.Error(err))
		return err
	}
	defer cc.Close()

	err = cc.CreateTopics(kafka.TopicConfig{
		Topic:             spec.Name,
		NumPartitions:     spec.NumPartitions,
		ReplicationFactor: spec.ReplicationFactor,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) && !strings.Contains(err.Error(), "already exists") {
		log.Warn("create topic failed", zap.Error(err))
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, spec.MaxWait)
	defer cancel()
	t := time.NewTicker(topicPollInterval)
	defer t.Stop()
	for {
		ps, err := conn.ReadPartitions(spec.Name)
		if err == nil && len(ps) > 0 {
			log.Info("topic ready", zap.Int("partitions", len(ps)))
			return nil
		}
		select {
		case <-waitCtx.Done():
			log.Warn("topic not confirmed ready in time", zap.Duration("max_wait", spec.MaxWait))
			return fmt.Errorf("%w: %s", errTopicNotReady, spec.Name)
		case <-t.C:
		}
	}
}
