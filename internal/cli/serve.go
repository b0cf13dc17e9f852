package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tenantadmin/internal/auth"
	api "tenantadmin/internal/http"
	"tenantadmin/internal/http/handlers"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if a.env.GinMode != "" {
		gin.SetMode(a.env.GinMode)
	}
	if err := a.seed(ctx); err != nil {
		return err
	}

	h := &handlers.Handlers{
		Tenants:      a.tenants,
		Users:        a.users,
		Activities:   a.activities,
		Logs:         a.logs,
		Logger:       a.logger,
		QueryTimeout: a.env.QueryTimeout,
		Ping:         a.ping,
	}
	r := api.NewRouter(api.RouterConfig{
		Handlers:       h,
		Resolver:       auth.NewResolver(a.env.JWTSecret),
		Logger:         a.logger,
		AllowedOrigins: a.env.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              a.env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
