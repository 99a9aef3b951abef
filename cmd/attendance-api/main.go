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

	"github.com/gin-gonic/gin"

	"dailyattendance/internal/api"
	"dailyattendance/internal/config"
	"dailyattendance/internal/httpmiddleware"
	"dailyattendance/internal/logger"
	"dailyattendance/internal/metrics"
	"dailyattendance/internal/records"
	"dailyattendance/internal/store"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadAPI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log := logger.FromEnv(cfg.Env).WithComponent("attendance-api")

	if config.Production(cfg.Env) {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.API, log logger.Logger) error {
	ctx := context.Background()

	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	var limiter httpmiddleware.Limiter = httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	if redisClient.Healthy(ctx) {
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.RateLimitPerMin)
		log.Infof("rate limiting through redis at %s", cfg.RedisAddr)
	} else if cfg.RedisAddr != "" {
		log.Warnf("redis not reachable at %s, rate limiting in memory", cfg.RedisAddr)
	}

	deps := api.Deps{
		Records: records.NewService(repo),
		Limiter: limiter,
		Metrics: metrics.New(),
		Log:     log,
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}
	r := api.NewRouter(deps)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("starting server on :%s (store=%s)", cfg.HTTPPort, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infof("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
	}
	log.Infof("server exited")
	return nil
}

func openRepository(ctx context.Context, cfg config.API, log logger.Logger) (records.Repository, func(), error) {
	if cfg.StoreBackend == "memory" {
		log.Warnf("using in-memory store; records are lost on exit")
		return records.NewMemory(), func() {}, nil
	}

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if db == nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("postgres not reachable: %w", err)
	}
	repo, err := records.NewPostgres(ctx, db)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return repo, closeDB, nil
}
