package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnold/goalfence-api/internal/geofence"
	"github.com/arnold/goalfence-api/internal/storage"
)

// regionsCmd prints the region set the server would register right now
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Print the region set derived from the stored home and goals",
	Long: `Reads the home point and active goals from the configured store and prints
the region set (home first, then goals by id, capped) with its signature.`,
	RunE: runRegions,
}

var hashPassphraseCmd = &cobra.Command{
	Use:   "hash-passphrase [passphrase]",
	Short: "Hash a device passphrase for DEVICE_PASSPHRASE_HASH",
	Args:  cobra.ExactArgs(1),
	RunE:  runHashPassphrase,
}

func runRegions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	repo := storage.NewRepository(store, log.Named("storage"))
	home, err := repo.Home(ctx)
	if err != nil {
		return fmt.Errorf("load home: %w", err)
	}
	goals, err := repo.ActiveGoals(ctx)
	if err != nil {
		return fmt.Errorf("load active goals: %w", err)
	}

	set := geofence.Recompute(home, geofence.GoalPoints(goals), geofence.Options{
		HomeRadiusMeters: cfg.HomeRadiusMeters,
		GoalRadiusMeters: cfg.GoalRadiusMeters,
		MinRadiusMeters:  cfg.MinRegionRadius,
		MaxGoalRegions:   cfg.MaxGoalRegions,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(set)
}

func runHashPassphrase(cmd *cobra.Command, args []string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash passphrase: %w", err)
	}
	fmt.Println(string(hash))
	return nil
}
