package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/SendModes/internal/obs"
	"github.com/NordCoder/SendModes/internal/repository/kafka"
	"go.uber.org/zap"
)

// Topics consumed and produced by send-modes. KAFKA_TOPICS overrides the list.
var defaultTopics = "send-modes.events,send-modes.send-events,send-modes.text-messages"

func main() {
	l, err := obs.NewLogger(obs.LogConfig{Level: env("LOG_LEVEL", "info"), App: "kafka-init"})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	brokers := strings.Split(env("KAFKA_BROKERS", "kafka:9092"), ",")
	spec := kafka.TopicSpec{
		NumPartitions:     envInt("KAFKA_PARTITIONS", 1),
		ReplicationFactor: envInt("KAFKA_RF", 1),
		MaxWait:           30 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, t := range strings.Split(env("KAFKA_TOPICS", defaultTopics), ",") {
		spec.Name = strings.TrimSpace(t)
		if spec.Name == "" {
			continue
		}
		if err := kafka.EnsureTopic(ctx, brokers, spec, l); err != nil {
			l.Fatal("ensure topic", zap.String("topic", spec.Name), zap.Error(err))
		}
	}
	l.Info("kafka-init ok")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
