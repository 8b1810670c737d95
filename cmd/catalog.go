package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal/hardware"
	"github.com/frahmantamala/hardware-marketplace/pkg/logger"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Serve the mock hardware tracking catalog",
	Long:  `Serve the reference hardware inventory at GET /hardware/{serial} for the http catalog mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startCatalogServer()
	},
}

var (
	catalogPort    int
	catalogLatency time.Duration
)

func startCatalogServer() error {
	lg := logger.L()
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", catalogPort),
		Handler:           hardware.NewServer(hardware.NewReferenceCatalog(catalogLatency), lg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		lg.Info("starting mock hardware catalog", "address", server.Addr, "latency", catalogLatency)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func init() {
	catalogCmd.Flags().IntVarP(&catalogPort, "port", "p", 8090, "listen port")
	catalogCmd.Flags().DurationVar(&catalogLatency, "latency", 0, "simulated lookup latency")

	rootCmd.AddCommand(catalogCmd)
}
