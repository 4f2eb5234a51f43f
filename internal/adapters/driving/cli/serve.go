package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goforscrim/scrimsync/internal/adapters/driving/httpapi"
	"github.com/goforscrim/scrimsync/internal/core/services"
	"github.com/goforscrim/scrimsync/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background sync scheduler",
	Long: `Starts the JSON API on the configured listen address and the
scheduler that keeps the configured channels synchronised. Runs until
interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if syncService == nil || recordStore == nil || schedulerStore == nil {
		return errors.New("services not configured")
	}
	if err := appConfig.ValidateForSync(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := services.NewScheduler(appConfig, schedulerStore, syncService)
	schedErr := make(chan error, 1)
	go func() {
		schedErr <- scheduler.Start(ctx)
	}()

	api := httpapi.NewServer(appConfig, recordStore, syncService, contactNotifier)
	server := &http.Server{
		Addr:              appConfig.ListenAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- server.ListenAndServe()
	}()

	cmd.Printf("Listening on http://%s\n", appConfig.ListenAddr)

	var err error
	select {
	case <-ctx.Done():
	case err = <-httpErr:
	case err = <-schedErr:
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("Serve: HTTP shutdown: %v", shutdownErr)
	}
	if stopErr := scheduler.Stop(); stopErr != nil {
		logger.Warn("Serve: scheduler stop: %v", stopErr)
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve failed: %w", err)
	}
	cmd.Println("Shut down.")
	return nil
}
