package main

import (
	"context"
	"net/http"

	dbadapter "postboard/internal/adapters/database"
	"postboard/internal/adapters/httpapi"
	"postboard/internal/config"
	postapp "postboard/internal/core/post/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlaceholderCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "placeholder",
		Short: "Serve a local JSONPlaceholder-compatible /posts API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.PlaceholderPort = port
			}
			return placeholder(cmd.Context(), cfg, config.Logger)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PLACEHOLDER_PORT)")
	return cmd
}

func placeholder(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := config.CloseDB(db); err != nil {
			logger.Error("Error closing database connection", zap.Error(err))
		}
	}()

	postSvc := postapp.NewPostService(dbadapter.NewPostRepositoryDatabase(db), logger)
	if _, err := postSvc.Seed(ctx, cfg.SeedPosts); err != nil {
		return err
	}

	r := httpapi.SetupPlaceholderRoutes(postSvc, logger)
	srv := &http.Server{Addr: ":" + cfg.PlaceholderPort, Handler: r}
	return runServer(ctx, srv, logger)
}
