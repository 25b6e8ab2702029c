package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/equipment-reservation/pkg/circuit_breaker"
	"github.com/Astemirdum/equipment-reservation/pkg/kafka"
	"github.com/Astemirdum/equipment-reservation/pkg/logger"
	"github.com/Astemirdum/equipment-reservation/pkg/postgres"
	"github.com/Astemirdum/equipment-reservation/pkg/redis"
	"github.com/Astemirdum/equipment-reservation/reservation/config"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/completer"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/events"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/handler"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/metrics"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/repository"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/server"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/service"
	"github.com/Astemirdum/equipment-reservation/reservation/migrations"
)

func Run(cfg *config.Config) error {
	if err := cfg.Auth.Validate(); err != nil {
		return errors.Wrap(err, "auth config")
	}
	log := logger.NewLogger(cfg.Log, "reservation")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return errors.Wrap(err, "db init")
	}
	defer db.Close()

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return errors.Wrap(err, "repo init")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	opts := []service.Option{
		service.WithMetrics(m),
		service.WithSuperadminEmail(cfg.SuperadminEmail),
	}
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return errors.Wrap(err, "kafka producer")
		}
		pub := events.NewPublisher(producer, kafka.ReservationEventsTopic, circuit_breaker.New(cfg.CircuitBreaker), m, log)
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn("kafka producer close", zap.Error(err))
			}
		}()
		opts = append(opts, service.WithPublisher(pub))
	} else {
		log.Info("kafka is not configured, reservation events are not published")
	}
	svc := service.NewService(repo, log, opts...)

	h := handler.New(svc, svc, svc, cfg.Auth, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())

	var sweeper *completer.Completer
	if cfg.Completer.Interval > 0 {
		lock, closeLock, err := newCompleterLock(ctx, cfg)
		if err != nil {
			return errors.Wrap(err, "completer lock")
		}
		defer closeLock()
		sweeper = completer.New(svc, lock, cfg.Completer.Interval, m, log)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server start ON: ",
			zap.String("addr", net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Debug("Graceful shutdown")
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if sweeper != nil {
		g.Go(func() error {
			return sweeper.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("run", zap.Error(err))
		return err
	}
	log.Info("Graceful shutdown finished")
	return nil
}

// newCompleterLock shares the sweep across replicas through Redis when configured.
func newCompleterLock(ctx context.Context, cfg *config.Config) (completer.Lock, func(), error) {
	if !cfg.Redis.Enabled() {
		return &completer.LocalLock{}, func() {}, nil
	}
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	lock, err := completer.NewRedisLock(client, cfg.Completer.LockKey, cfg.Completer.LockTTL)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return lock, func() { _ = client.Close() }, nil
}
