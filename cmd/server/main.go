package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mfontes/dashboard-comercial-go/internal/cache"
	"github.com/mfontes/dashboard-comercial-go/internal/config"
	"github.com/mfontes/dashboard-comercial-go/internal/httpx"
	"github.com/mfontes/dashboard-comercial-go/internal/models"
	"github.com/mfontes/dashboard-comercial-go/internal/sales"
	"github.com/mfontes/dashboard-comercial-go/internal/upstream"
	"github.com/mfontes/dashboard-comercial-go/internal/utils"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	cl := upstream.NewHTTPClient(cfg.HTTPTimeout)
	gw := upstream.NewGateway(cl, cfg.GraphBaseURL, cfg.AccessToken, cfg.AdAccountID, logger)
	c := cache.New(gw, cfg.CacheTTL, cfg.LookbackDays, logger)

	repoA, repoB := buildRepositories(cfg, logger)

	r := httpx.NewRouter(logger, c, repoA, repoB)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", slog.String("err", err.Error()))
	}
	logger.Info("server stopped")
}

// buildRepositories selects the sales backend: redis when configured,
// otherwise process memory.
func buildRepositories(cfg config.Config, logger *slog.Logger) (sales.Repository, sales.Repository) {
	if cfg.RedisAddr == "" {
		logger.Info("sales storage: in-memory")
		return sales.NewMemoryRepository(models.TeamA), sales.NewMemoryRepository(models.TeamB)
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	err := utils.NewBackoff(200*time.Millisecond, 4).Do(func(i int) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		logger.Error("redis unreachable, falling back to in-memory sales storage", slog.String("err", err.Error()))
		return sales.NewMemoryRepository(models.TeamA), sales.NewMemoryRepository(models.TeamB)
	}
	logger.Info("sales storage: redis", slog.String("addr", cfg.RedisAddr))
	return sales.NewRedisRepository(models.TeamA, rdb), sales.NewRedisRepository(models.TeamB, rdb)
}
