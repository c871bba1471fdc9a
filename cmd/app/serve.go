package main

import (
	"context"
	"net/http"

	"postboard/internal/adapters/httpapi"
	"postboard/internal/adapters/memory"
	redisadapter "postboard/internal/adapters/redis"
	"postboard/internal/adapters/remote"
	"postboard/internal/config"
	"postboard/internal/core/board"
	boardapp "postboard/internal/core/board/service"
	boardPort "postboard/internal/ports/board"
	"postboard/internal/workers"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the post board page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.AppPort = port
			}
			return serve(cmd.Context(), cfg, config.Logger)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides APP_PORT)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	rule, err := board.ParseRule(cfg.FormValidation)
	if err != nil {
		logger.Warn("Falling back to strict form validation", zap.Error(err))
	}

	var (
		store boardPort.BoardRepository
		jobs  []func(context.Context) error
	)
	if cfg.RedisAddr != "" {
		client, err := config.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		store = redisadapter.NewBoardRepositoryRedis(client, cfg.SessionTTL, logger)
	} else {
		mem := memory.NewBoardRepositoryMemory()
		sweeper := workers.NewSweeperWorker(mem, cfg.SessionTTL, cfg.SweepInterval, logger)
		store = mem
		jobs = append(jobs, sweeper.Run)
	}

	api := remote.NewPostClient(cfg.APIBaseURL, cfg.HTTPTimeout, logger)
	boardSvc := boardapp.NewBoardService(store, api, boardapp.Options{
		PageSize: cfg.PageSize,
		UserID:   cfg.UserID,
		Rule:     rule,
	}, logger)

	r := httpapi.SetupRoutes(boardSvc, cfg.SessionTTL, logger)
	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r}
	logger.Info("Remote posts API", zap.String("baseURL", cfg.APIBaseURL), zap.Int("pageSize", cfg.PageSize))
	return runServer(ctx, srv, logger, jobs...)
}
