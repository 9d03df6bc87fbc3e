package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"lorecast/internal/config"
	"lorecast/internal/daemon"
	"lorecast/internal/logging"
	"lorecast/internal/queue"
	"lorecast/internal/store"
	"lorecast/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}

	qc := queue.NewClient(st.Redis(), cfg.Redis.Prefix)
	manager := workflow.NewManager(cfg, st, qc, logger)
	registerStages(manager, cfg, st)

	d, err := daemon.New(cfg, st, logger, manager)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = st.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("lorecastd shutting down")
}
