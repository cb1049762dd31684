package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/accessdeck/accessdeck/internal/activity"
	"github.com/accessdeck/accessdeck/internal/app"
	"github.com/accessdeck/accessdeck/internal/auth"
	"github.com/accessdeck/accessdeck/internal/observability"
	"github.com/accessdeck/accessdeck/internal/permissions"
	"github.com/accessdeck/accessdeck/internal/platform/db"
	"github.com/accessdeck/accessdeck/internal/roles"
	"github.com/accessdeck/accessdeck/internal/status"
	"github.com/accessdeck/accessdeck/internal/users"
	"github.com/accessdeck/accessdeck/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	recorder := activity.NewRecorder(activity.NewRepository(pool), logger)

	permissionsService := permissions.NewService(permissions.NewRepository(pool), recorder)
	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo, permissions.NewRepository(pool), recorder)
	usersService := users.NewService(users.NewRepository(pool), rolesRepo, recorder)
	activityService := activity.NewService(activity.NewRepository(pool))

	tokens := auth.NewTokenManager(redisClient, cfg.TokenTTL)
	authService := auth.NewService(auth.NewRepository(pool), tokens, cfg.AdminRoleName)

	reporter := status.NewReporter()
	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthHandler:        auth.NewHandler(logger, authService),
		PermissionsHandler: permissions.NewHandler(logger, permissionsService),
		RolesHandler:       roles.NewHandler(logger, rolesService),
		UsersHandler:       users.NewHandler(logger, usersService),
		ActivityHandler:    activity.NewHandler(logger, activityService),
		StatusHandler:      status.NewHandler(reporter),
		StatusReporter:     reporter,
		JobsHandler:        jobs.NewHandler(inspector, logger),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server run", slog.Any("error", err))
		os.Exit(1)
	}
}
