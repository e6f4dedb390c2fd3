package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	config "github.com/NordCoder/SendModes/internal/config/send-modes"
	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/obs"
	"github.com/NordCoder/SendModes/internal/obs/retry"
	"github.com/NordCoder/SendModes/internal/outbox"
	"github.com/NordCoder/SendModes/internal/repository/kafka"
	pg "github.com/NordCoder/SendModes/internal/repository/postgres"
	redisinfra "github.com/NordCoder/SendModes/internal/repository/redis"
	"github.com/NordCoder/SendModes/internal/services/heartbeat"
	"github.com/NordCoder/SendModes/internal/services/notifier"
	"github.com/NordCoder/SendModes/internal/services/sendmodes"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type task struct {
	name string
	run  func(context.Context) error
}

func wiring(
	cfg *config.Config,
	db *pg.DB,
	rdb *redis.Client,
	events, sends *kafka.Consumer,
	out *kafka.Producer,
	l *zap.Logger,
) []task {
	dir := &sendmodes.Directory{
		Repo:  pg.NewSendModeRepo(db),
		Cache: redisinfra.NewSendModeCache(rdb, cfg.Redis.TTL),
		API:   buildRemote(cfg, l),
		Tx:    pg.NewTransactor(db, l),
		Clock: systemClock{},
		Log:   l.With(zap.String("component", "directory")),
	}
	templates := &sendmodes.TemplateDirectory{
		Repo:  pg.NewTemplateRepo(db),
		Cache: redisinfra.NewTemplateCache(rdb, cfg.Redis.TTL),
		Log:   l.With(zap.String("component", "templates")),
	}
	var publisher notification.Publisher = kafka.NewTextMessagesKafka(out)
	var tasks []task
	if cfg.Outbox.Enable {
		repo := pg.NewOutboxRepo(db)
		relay := outbox.NewRunner(
			l.With(zap.String("component", "outbox")),
			repo,
			outbox.MakeGlobalHandler(publisher, retry.Policy{
				Attempts: 3,
				Backoff:  retry.Fixed{Interval: 200 * time.Millisecond},
			}),
			cfg.Outbox,
		)
		tasks = append(tasks, task{"outbox", relay.Run})
		publisher = &outbox.TextMessages{Repo: repo}
	}

	uc := &notifier.Handler{
		Modes:     dir,
		Templates: templates,
		Out:       publisher,
		Log:       l.With(zap.String("component", "notifier")),
	}
	tasks = append(tasks,
		task{"events", (&notifier.Controller{Log: l, Sub: events, UC: uc}).Run},
		task{"send-events", (&notifier.Controller{Log: l, Sub: sends, UC: uc}).RunSend},
	)
	if cfg.Heartbeat.Enable {
		hb := &heartbeat.Runner{
			Log:         l.With(zap.String("component", "heartbeat")),
			Dir:         dir,
			AggregateID: cfg.Heartbeat.AggregateID,
			Resync:      cfg.Heartbeat.Resync,
		}
		tasks = append(tasks, task{"heartbeat", hb.Run})
	}
	return tasks
}

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}

	l, err := initLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()
	l.Info("starting send-modes",
		zap.String("env", cfg.App.Env),
		zap.String("ver", cfg.App.Version),
		zap.String("send_mode_url", cfg.SendMode.URL),
		zap.String("send_mode_api_url", cfg.SendModeAPI.URL),
	)

	otelShutdown, err := initOTel(rootCtx, cfg)
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	db, err := initDB(rootCtx, cfg, l)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	l.Info("db connected")

	rdb, err := initRedis(rootCtx, cfg)
	if err != nil {
		l.Fatal("redis connect", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()
	l.Info("redis connected")

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, l,
		func(ctx context.Context) error { return db.Pool.Ping(ctx) },
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	)

	events := kafka.BootstrapConsumer(rootCtx, &cfg.KafkaIn, l)
	defer func() { _ = events.Close() }()
	sends := kafka.BootstrapConsumer(rootCtx, &cfg.KafkaSendIn, l)
	defer func() { _ = sends.Close() }()
	out := kafka.BootstrapProducer(rootCtx, cfg.KafkaOut.Brokers, cfg.KafkaOut.Topic, l)
	defer func() { _ = out.Close() }()
	l.Info("kafka initialized",
		zap.String("events_topic", cfg.KafkaIn.Topic),
		zap.String("send_events_topic", cfg.KafkaSendIn.Topic),
		zap.String("out_topic", cfg.KafkaOut.Topic),
	)

	runCtx, cancelRun := context.WithCancel(rootCtx)
	defer cancelRun()

	var wg sync.WaitGroup
	errCh := make(chan error, 8)
	for _, t := range wiring(cfg, db, rdb, events, sends, out, l) {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			l.Info("task starting", zap.String("task", t.name))
			if err := t.run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				l.Error("task failed", zap.String("task", t.name), zap.Error(err))
				errCh <- err
			}
		}(t)
	}

	select {
	case <-rootCtx.Done():
		l.Info("shutdown signal")
	case <-errCh:
	}
	cancelRun()

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shCtx.Done():
		l.Warn("tasks did not stop in time")
	}
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
