package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postboard/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	config.InitLogger()
	defer func() { _ = config.Logger.Sync() }()

	root := &cobra.Command{
		Use:           "app",
		Short:         "Paginated post board backed by a JSONPlaceholder-style API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newPlaceholderCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		config.Logger.Error("command failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

// runServer serves srv until ctx is cancelled, alongside any background
// jobs, and shuts the server down gracefully.
func runServer(ctx context.Context, srv *http.Server, logger *zap.Logger, jobs ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App is running...", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	for _, job := range jobs {
		job := job
		g.Go(func() error { return job(gctx) })
	}

	return g.Wait()
}
