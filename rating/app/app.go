package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rateflow/rateflow/pkg/logger"
	"github.com/rateflow/rateflow/pkg/postgres"
	"github.com/rateflow/rateflow/pkg/rabbitmq"
	"github.com/rateflow/rateflow/rating/config"
	"github.com/rateflow/rateflow/rating/internal/handler"
	"github.com/rateflow/rateflow/rating/internal/repository"
	"github.com/rateflow/rateflow/rating/internal/server"
	"github.com/rateflow/rateflow/rating/internal/service"
	"github.com/rateflow/rateflow/rating/migrations"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "rating")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo rating", zap.Error(err))
	}

	// the broker connection dials lazily: a broker outage at startup must not
	// keep ratings from being accepted
	conn := rabbitmq.NewConnection(cfg.Rabbit, log)
	publisher := rabbitmq.NewPublisher(conn, cfg.Rabbit, log)

	svc := service.NewService(repo, publisher, log)

	h := handler.New(svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	conn.Close()
	db.Close()
	log.Info("Graceful shutdown finished")
}
