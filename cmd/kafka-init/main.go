package main

import (
	"context"
	"flag"
	"log"
	"time"

	config "github.com/NordCoder/hcdispatch/internal/config/notifier"
	"github.com/NordCoder/hcdispatch/internal/obs"
	"github.com/NordCoder/hcdispatch/internal/repository/kafka"

	"go.uber.org/zap"
)

// kafka-init creates the status-change and notification topics used by the
// notifier before the services start.
func main() {
	cfgPath := flag.String("config", "config/notifier.yaml", "path to config file")
	partitions := flag.Int("partitions", 1, "partitions per topic")
	rf := flag.Int("rf", 1, "replication factor")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	l, err := obs.NewLogger(cfg.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	topics := []struct {
		brokers []string
		name    string
	}{
		{cfg.In.Brokers, cfg.In.Topic},
		{cfg.Out.Brokers, cfg.Out.Topic},
	}
	for _, t := range topics {
		err := kafka.EnsureTopic(ctx, t.brokers, kafka.TopicSpec{
			Name:              t.name,
			NumPartitions:     *partitions,
			ReplicationFactor: *rf,
			MaxWait:           30 * time.Second,
		}, l)
		if err != nil {
			l.Fatal("ensure topic", zap.String("topic", t.name), zap.Error(err))
		}
	}
	l.Info("kafka-init ok")
}
