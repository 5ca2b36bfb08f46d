package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/server"
	"github.com/arnold/goalfence-api/internal/services"
	"github.com/arnold/goalfence-api/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, region monitor, presence poller and goal sync",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repo := storage.NewRepository(store, log.Named("storage"))
	push := services.NewPushService(ctx, cfg.FCMServiceAccount, repo, log.Named("push"))

	srv := server.New(cfg, server.Deps{
		Store:    store,
		Notifier: push,
		Registry: reg,
		Logger:   log,
	})

	log.Info("Starting goalfence",
		zap.String("store", cfg.StoreDriver),
		zap.Bool("push", push.Enabled()))
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info("Shut down")
	return nil
}
