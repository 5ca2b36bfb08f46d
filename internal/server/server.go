// Package server assembles the goalfence components into one process.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arnold/goalfence-api/internal/config"
	"github.com/arnold/goalfence-api/internal/geofence"
	"github.com/arnold/goalfence-api/internal/handlers"
	"github.com/arnold/goalfence-api/internal/lifecycle"
	"github.com/arnold/goalfence-api/internal/metrics"
	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/poller"
	"github.com/arnold/goalfence-api/internal/presence"
	"github.com/arnold/goalfence-api/internal/reconcile"
	"github.com/arnold/goalfence-api/internal/routes"
	"github.com/arnold/goalfence-api/internal/services"
	"github.com/arnold/goalfence-api/internal/storage"
)

const shutdownTimeout = 5 * time.Second

// Server owns the foreground loops and the background event pipeline.
type Server struct {
	App         *fiber.App
	Handler     *handlers.Handler
	Coordinator *geofence.Coordinator
	Monitor     *geofence.LocalMonitor
	Poller      *poller.Poller
	Syncer      *reconcile.Syncer

	cfg    *config.Config
	logger *zap.Logger
}

// Deps are the pieces chosen by the caller rather than by configuration.
type Deps struct {
	Store    storage.Store
	Notifier presence.Notifier
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

func New(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)

	repo := storage.NewRepository(deps.Store, logger.Named("storage"))
	state := presence.NewStateStore(repo)
	bridge := lifecycle.NewBridge(repo, lifecycle.WithLogger(logger.Named("lifecycle")))

	proc := presence.NewProcessor(state, repo, deps.Notifier, bridge,
		presence.WithLogger(logger.Named("presence")),
		presence.WithMetrics(m),
		presence.WithCooldown(cfg.EventCooldown))
	monitor := geofence.NewLocalMonitor(func(ctx context.Context, ev models.EventRecord) {
		proc.Handle(ctx, ev)
	}, logger.Named("monitor"))

	coord := geofence.NewCoordinator(repo, monitor, repo, state, geofence.Options{
		HomeRadiusMeters: cfg.HomeRadiusMeters,
		GoalRadiusMeters: cfg.GoalRadiusMeters,
		MinRadiusMeters:  cfg.MinRegionRadius,
		MaxGoalRegions:   cfg.MaxGoalRegions,
	}, geofence.WithLogger(logger.Named("geofence")), geofence.WithMetrics(m))

	hub := handlers.NewHub(logger.Named("ws"))
	positions := poller.NewLatestPosition(cfg.PositionMaxAge)
	poll := poller.New(repo, positions, cfg.HomeRadiusMeters,
		poller.WithLogger(logger.Named("poller")),
		poller.WithMetrics(m),
		poller.WithInterval(cfg.PollInterval),
		poller.WithMessageCooldown(cfg.MessageCooldown),
		poller.WithPublisher(func(st poller.Status) {
			hub.Broadcast(handlers.WSEvent{Type: handlers.EventPresenceStatus, Data: st})
		}))

	cache := reconcile.NewCache()
	syncer := reconcile.NewSyncer(repo, cache,
		reconcile.WithLogger(logger.Named("sync")),
		reconcile.WithMetrics(m),
		reconcile.WithInterval(cfg.SyncInterval),
		reconcile.WithOnChange(func(ctx context.Context, snap reconcile.Snapshot) {
			hub.Broadcast(handlers.WSEvent{Type: handlers.EventGoalsSynced, Data: snap})
			if _, err := coord.Sync(ctx); err != nil && !errors.Is(err, geofence.ErrPermissionDenied) {
				logger.Warn("Region sync after goal change failed", zap.Error(err))
			}
		}))

	goals := services.NewGoalService(repo, bridge,
		services.WithGoalLogger(logger.Named("goals")),
		services.WithGoalMetrics(m))

	h := &handlers.Handler{
		Repo:           repo,
		Goals:          goals,
		Coordinator:    coord,
		Monitor:        monitor,
		Presence:       state,
		Poller:         poll,
		Positions:      positions,
		Syncer:         syncer,
		Cache:          cache,
		Hub:            hub,
		JWTSecret:      cfg.JWTSecret,
		PassphraseHash: cfg.DevicePassphraseHash,
		UploadDir:      cfg.UploadDir,
		Logger:         logger.Named("http"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "goalfence-api",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	routes.Setup(app, h, reg)

	return &Server{
		App:         app,
		Handler:     h,
		Coordinator: coord,
		Monitor:     monitor,
		Poller:      poll,
		Syncer:      syncer,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run serves HTTP and runs the monitor, poller and syncer until ctx is done
// or one of them fails.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.Coordinator.Sync(ctx); err != nil {
		s.logger.Warn("Initial region sync failed", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Monitor.Run(ctx) })
	g.Go(func() error { return s.Poller.Run(ctx) })
	g.Go(func() error { return s.Syncer.Run(ctx) })
	g.Go(func() error {
		s.logger.Info("Listening", zap.String("port", s.cfg.Port))
		return s.App.Listen(":" + s.cfg.Port)
	})
	g.Go(func() error {
		<-ctx.Done()
		if err := s.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return err
		}
		return s.Monitor.Stop(context.Background())
	})
	return g.Wait()
}
