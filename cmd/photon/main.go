package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/photonwallet/photon/internal/config"
	"github.com/photonwallet/photon/internal/core/application"
	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/photonwallet/photon/internal/infrastructure/db"
	"github.com/photonwallet/photon/internal/infrastructure/engine/sparkrpc"
	scheduler "github.com/photonwallet/photon/internal/infrastructure/scheduler/gocron"
	"github.com/photonwallet/photon/internal/interface/web"
	log "github.com/sirupsen/logrus"
)

// nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	log.Info("starting photon...")

	dbSvc, err := db.NewService(db.ServiceConfig{
		DbType:   cfg.DbType,
		DbConfig: []any{cfg.Datadir, nil},
	})
	if err != nil {
		log.WithError(err).Fatal("failed to open db")
	}

	buildInfo := application.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	schedulerSvc := scheduler.NewScheduler()
	engineFactory := sparkrpc.NewFactory()

	appSvc, err := application.NewService(
		buildInfo, engineFactory, dbSvc, schedulerSvc,
		domain.Network(cfg.Network),
		cfg.EngineURL, cfg.EngineWSURL, cfg.EngineKey,
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init application service")
	}

	if restored, err := appSvc.Restore(context.Background()); err != nil {
		log.WithError(err).Warn("failed to restore wallet session")
	} else if restored {
		log.Info("wallet session restored")
	}

	svc := web.NewService(cfg.HTTPPort, appSvc)

	log.RegisterExitHandler(svc.Stop)
	log.RegisterExitHandler(appSvc.Close)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		log.Fatal(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
}
