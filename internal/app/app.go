package app

import (
	"context"
	"log/slog"

	httpapp "bugdash/internal/app/http"
	"bugdash/internal/config"
	"bugdash/internal/lib/logger/sl"
	"bugdash/internal/repository"
	services "bugdash/internal/services/bug_service"
	"bugdash/internal/storage/filestorage"
	"bugdash/internal/storage/listcache"
	"bugdash/internal/storage/postgresql"
	httprouters "bugdash/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Storage    *postgresql.Storage
}

func New(log *slog.Logger, cfg *config.Config) *App {
	ctx := context.Background()

	if err := postgresql.RunMigrations(ctx, cfg.DSN); err != nil {
		panic(err)
	}

	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		panic(err)
	}

	bugRepo := repository.NewBugRepository(storage.Pool())

	var cache listcache.SummaryCache
	if cfg.Redis.RedisAddr != "" {
		client := listcache.NewRedisClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
		redisCache := listcache.NewRedis(client, listcache.DefaultTTL)
		if err := redisCache.HealthCheck(ctx); err != nil {
			log.Warn("redis unreachable, using in-process summary cache", sl.Err(err))
			cache = listcache.NewMemory(listcache.DefaultTTL)
		} else {
			cache = redisCache
		}
	} else {
		cache = listcache.NewMemory(listcache.DefaultTTL)
	}

	bugService := services.NewBugService(log, bugRepo, cache)

	screenshots, err := filestorage.NewLocalStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.MaxSize)
	if err != nil {
		panic(err)
	}

	routers := httprouters.NewRouter(log, bugService, screenshots)

	server := httpapp.New(log, cfg.HTTP.Host, cfg.HTTP.Port, screenshots.BaseDir(), routers)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		Storage:    storage,
	}
}

func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		panic(err)
	}

	a.Storage.Stop()
}
