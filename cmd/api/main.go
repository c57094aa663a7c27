//	@title			File Upload API
//	@version		1.0
//	@description	Upload, list and download files kept in a server-managed directory.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fileupload/service/internal/config"
	"github.com/fileupload/service/internal/logging"
	"github.com/fileupload/service/internal/server"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		logging.Fatal("fileupload stopped", "err", err)
	}
}

func newRootCommand() *cobra.Command {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "fileupload",
		Short: "Serve the file upload application.",
		Long: `Serves an upload form, a listing of uploaded files and downloads by name.
Uploaded files live under storage.location, which is wiped on every start
unless storage.wipe_on_start is false.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", configPath, "path to the YAML config file")

	return cmd
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.New(os.Stderr, level)
	if cfg.IsProduction() {
		logger = logging.NewProduction(os.Stderr, level)
	}
	logging.SetDefault(logger)

	store, err := server.NewStorage(cfg)
	if err != nil {
		return fmt.Errorf("storage setup: %w", err)
	}
	if err := server.Prepare(ctx, store, cfg.Storage.WipeOnStart); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.NewRouter(cfg, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"port", cfg.Server.Port,
			"env", cfg.Server.Env,
			"backend", cfg.Storage.Backend,
			"location", cfg.Storage.Location,
		)
		logger.Info("swagger UI", "url", "http://localhost:"+cfg.Server.Port+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
