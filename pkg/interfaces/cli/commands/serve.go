package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/cockpit/pkg/interfaces/http/handler"
)

func newServeCmd(opts *rootOptions, build BuildInfo) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gantt HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, build, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions, build BuildInfo, port int) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.ping(ctx); err != nil {
		logger.Warn("Dependency not ready at startup", zap.Error(err))
	}

	router := handler.NewRouter(a.service, handler.RouterConfig{
		Mode:         cfg.Server.Mode,
		AllowOrigins: cfg.Server.AllowOrigins,
		Build:        handler.BuildInfo{Version: build.Version, BuildTime: build.BuildTime},
		Readiness:    a.readiness,
	}, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("source", cfg.Source.Kind),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited")
	return nil
}
