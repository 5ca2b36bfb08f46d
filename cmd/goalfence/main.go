package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/config"
	"github.com/arnold/goalfence-api/internal/database"
	"github.com/arnold/goalfence-api/internal/logger"
	"github.com/arnold/goalfence-api/internal/storage"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "goalfence",
	Short: "Location-aware goal tracker backend",
	Long: `goalfence keeps a home point and a set of location goals, watches the
device's geofence events and completes goals when the device arrives.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		var err error
		log, err = logger.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, regionsCmd, hashPassphraseCmd)
}

// openStore picks the document backend from STORE_DRIVER.
func openStore(ctx context.Context) (storage.Store, func(), error) {
	switch cfg.StoreDriver {
	case "redis":
		s, err := storage.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil
	case "gorm", "":
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return storage.NewGormStore(db), closeFn, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
