package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cloudlockr/cloudlockr/internal/db"
	"github.com/cloudlockr/cloudlockr/internal/handlers"
	"github.com/cloudlockr/cloudlockr/internal/handlers/middleware"
	"github.com/cloudlockr/cloudlockr/internal/logger"
	"github.com/cloudlockr/cloudlockr/internal/repository/postgres"
	"github.com/cloudlockr/cloudlockr/internal/repository/rediskv"
	"github.com/cloudlockr/cloudlockr/internal/service/auth"
	"github.com/cloudlockr/cloudlockr/internal/service/auth/tokencodec"
	"github.com/cloudlockr/cloudlockr/internal/service/file"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Connect to redis, fail fast if it is unreachable
	rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)
	whitelist := rediskv.NewWhitelist(rdb)
	limiter := rediskv.NewLoginLimiter(rdb, c.LoginMaxAttempts, c.LoginWindow, c.LoginBlock)

	// Initialize services
	codec, err := tokencodec.New(tokencodec.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{}, codec, whitelist, storage.User())
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	fileService, err := file.NewService(storage.File(), storage.User())
	if err != nil {
		return nil, fmt.Errorf("error while creating file service. Err: %w", err)
	}

	mux := handlers.NewRouter(
		authService,
		fileService,
		middleware.LoginRateLimiter(limiter, logger),
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
