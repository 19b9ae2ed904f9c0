package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rateflow/rateflow/notification/config"
	"github.com/rateflow/rateflow/notification/internal/handler"
	"github.com/rateflow/rateflow/notification/internal/repository"
	"github.com/rateflow/rateflow/notification/internal/server"
	"github.com/rateflow/rateflow/notification/internal/service"
	"github.com/rateflow/rateflow/notification/migrations"
	"github.com/rateflow/rateflow/pkg/logger"
	"github.com/rateflow/rateflow/pkg/postgres"
	"github.com/rateflow/rateflow/pkg/rabbitmq"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "notification")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo notification", zap.Error(err))
	}
	svc := service.NewService(repo, log)

	consumer := rabbitmq.NewConsumer(cfg.Rabbit, svc.HandleRatingCreated, log)

	h := handler.New(svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Run(ctx)
	})
	g.Go(func() error {
		return srv.Run()
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	cancel()
	if err := g.Wait(); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
