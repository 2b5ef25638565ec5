package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/hcdispatch/internal/config/notifier"
	"github.com/NordCoder/hcdispatch/internal/dispatch"
	"github.com/NordCoder/hcdispatch/internal/obs"
	"github.com/NordCoder/hcdispatch/internal/obs/retry"
	"github.com/NordCoder/hcdispatch/internal/repository/kafka"
	pg "github.com/NordCoder/hcdispatch/internal/repository/postgres"
	notifier "github.com/NordCoder/hcdispatch/internal/services/notifier"
	"github.com/NordCoder/hcdispatch/internal/transport"

	"go.uber.org/zap"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func wiring(cfg *config.Config, db *pg.DB, cons *kafka.Consumer, events *kafka.NotificationEventsKafka, l *zap.Logger) *notifier.Controller {
	deps := cfg.TransportDeps()
	deps.HTTP = transport.NewHTTPClient(cfg.AsHTTPConfig())
	deps.Mail = notifier.NewMailer(cfg.SMTP).WithLogger(l)

	d := dispatch.New(l, pg.NewNotificationRepo(db), transport.NewSet(deps), systemClock{})

	uc := &notifier.Handler{
		Checks:   pg.NewCheckRepo(db),
		Channels: pg.NewChannelRepo(db),
		Dispatch: d,
		Events:   events,
		Log:      l,
		Workers:  cfg.Dispatch.Workers,
		Publish:  retry.PublishPolicy("notification_recorded", l),
	}
	return &notifier.Controller{Log: l, Sub: cons, UC: uc}
}

func main() {
	cfgPath := flag.String("config", "config/notifier.yaml", "path to config file")
	flag.Parse()

	// init
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	l.Info("starting notifier",
		zap.Strings("kafka_in", cfg.In.Brokers),
		zap.String("topic_in", cfg.In.Topic),
		zap.String("topic_out", cfg.Out.Topic),
		zap.String("metrics_addr", cfg.Server.MetricsAddr),
		zap.String("smtp_addr", cfg.SMTP.Addr),
		zap.Int("workers", cfg.Dispatch.Workers),
	)

	// otel
	otelCloser, err := obs.SetupOTel(rootCtx, cfg.AsOTELConfig())
	if err != nil {
		l.Warn("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// db
	db, err := pg.NewDB(rootCtx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	l.Info("db connected")

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, l, db.Ping)

	// kafka
	cons := kafka.BootstrapConsumer(rootCtx, cfg.AsConsumerConfig(), l)
	defer func() { _ = cons.Close() }()

	prod := kafka.NewProducer(cfg.Out.Brokers, cfg.Out.Topic).WithLogger(l)
	defer func() { _ = prod.Close() }()

	// start
	ctrl := wiring(cfg, db, cons, kafka.NewNotificationEventsKafka(prod), l)
	errCh := make(chan error, 1)
	go func() {
		l.Info("controller starting")
		errCh <- ctrl.Run(rootCtx)
	}()

	select {
	case <-rootCtx.Done():
		l.Info("shutdown signal")
	case runErr := <-errCh:
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			l.Error("controller error", zap.Error(runErr))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
