package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	"github.com/frahmantamala/hardware-marketplace/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that run outside the HTTP server, such as the listing expiry sweeper.`,
}

var expiryWorkerCmd = &cobra.Command{
	Use:   "expiry",
	Short: "Start the listing expiry sweeper",
	Long:  `Periodically move available listings past their expiration date to expired.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startExpiryWorker()
	},
}

var (
	expiryInterval time.Duration
	expiryOnce     bool
)

func startExpiryWorker() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	lg := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	gdb, err := initGorm(db)
	if err != nil {
		return err
	}

	svc := buildServices(cfg, gdb, db, lg)
	svc.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		svc.Close(ctx)
	}()

	if expiryOnce {
		n, err := svc.Listing.ExpireListings(context.Background())
		if err != nil {
			return fmt.Errorf("expiry sweep failed: %w", err)
		}
		lg.Info("expiry sweep complete", "expired", n)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := listing.NewExpirySweeper(svc.Listing, getDurationFlag(expiryInterval, cfg.Marketplace.ExpiryInterval), lg)
	sweeper.Start(ctx)
	lg.Info("expiry worker is running. Press Ctrl+C to stop.")

	<-ctx.Done()
	lg.Info("received signal, shutting down expiry worker")
	sweeper.Stop()
	return nil
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	expiryWorkerCmd.Flags().DurationVar(&expiryInterval, "interval", 0, "Sweep interval (overrides config)")
	expiryWorkerCmd.Flags().BoolVar(&expiryOnce, "once", false, "Run a single sweep and exit")

	workerCmd.AddCommand(expiryWorkerCmd)
	rootCmd.AddCommand(workerCmd)
}
