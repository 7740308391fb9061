package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ignatzorin/campus-lostfound/internal/config"
	"github.com/ignatzorin/campus-lostfound/internal/db"
	httpHandlers "github.com/ignatzorin/campus-lostfound/internal/http/handlers"
	"github.com/ignatzorin/campus-lostfound/internal/http/middleware"
	httpRouter "github.com/ignatzorin/campus-lostfound/internal/http/router"
	"github.com/ignatzorin/campus-lostfound/internal/lock"
	"github.com/ignatzorin/campus-lostfound/internal/logger"
	"github.com/ignatzorin/campus-lostfound/internal/metrics"
	"github.com/ignatzorin/campus-lostfound/internal/redis"
	"github.com/ignatzorin/campus-lostfound/internal/repository"
	"github.com/ignatzorin/campus-lostfound/internal/service"
	"github.com/ignatzorin/campus-lostfound/internal/storage"
	"github.com/ignatzorin/campus-lostfound/internal/validation"
	"github.com/ignatzorin/campus-lostfound/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.Env)
	mainLog := logger.WithComponent("main")

	if err := validation.RegisterBindings(); err != nil {
		mainLog.Fatalf("ошибка регистрации валидаторов: %v", err)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLog.Fatalf("ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		mainLog.Fatalf("ошибка миграций: %v", err)
	}

	// Redis необязателен: без него блокировки и лимитер работают в памяти процесса.
	var (
		redisClient *redis.Client
		rawRedis    *goredis.Client
		locker      lock.Locker = lock.NewLocal()
	)
	if cfg.RedisURL != "" {
		redisClient, err = redis.New(ctx, cfg.RedisURL)
		if err != nil {
			mainLog.Fatalf("ошибка подключения к redis: %v", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				mainLog.WithError(err).Warn("ошибка закрытия redis")
			}
		}()
		rawRedis = redisClient.Raw()
		locker = lock.NewRedis(redisClient, "match", cfg.MatchLockTTL)
		mainLog.Info("redis подключён: распределённые блокировки и лимитер")
	}

	rateLimitStore, err := middleware.NewRateLimitStore(rawRedis, redisPrefix(redisClient))
	if err != nil {
		mainLog.Fatalf("ошибка инициализации лимитера: %v", err)
	}

	// Метрики.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	matchingMetrics := metrics.NewMatchingMetrics(registry)
	claimMetrics := metrics.NewClaimMetrics(registry)

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MediaURLPrefix, cfg.MaxUploadSizeMB)
	if err != nil {
		mainLog.Fatalf("не удалось подготовить файловое хранилище: %v", err)
	}

	cache := service.NewCacheService(ctx)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	go hub.Run()

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	locationRepo := repository.NewLocationRepository(dbConn)
	foundRepo := repository.NewFoundItemRepository(dbConn)
	lostRepo := repository.NewLostItemRepository(dbConn)
	matchRepo := repository.NewMatchRepository(dbConn)
	claimRepo := repository.NewClaimRepository(dbConn)
	statsRepo := repository.NewStatsRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	matchingService := service.NewMatchingService(lostRepo, foundRepo, matchRepo, locker, matchingMetrics, hub)
	itemService := service.NewItemService(service.ItemServiceConfig{
		Found:           foundRepo,
		Lost:            lostRepo,
		Locations:       locationRepo,
		Users:           userRepo,
		Photos:          photoStorage,
		Matcher:         matchingService,
		Cache:           cache,
		SuggestionLimit: cfg.MatchSuggestionLimit,
	})
	claimService := service.NewClaimService(claimRepo, cache, claimMetrics, hub)
	statsService := service.NewStatsService(statsRepo, cache, cfg.StatsCacheTTL)
	seedService := service.NewSeedService(locationRepo, userRepo, foundRepo, lostRepo, matchingService)

	// HTTP хэндлеры.
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	if redisClient != nil {
		healthHandler.With("redis", httpHandlers.PingFunc(redisClient.Ping))
	}

	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Auth:      httpHandlers.NewAuthHandler(authService),
		Locations: httpHandlers.NewLocationHandler(itemService),
		Found:     httpHandlers.NewFoundItemHandler(itemService, photoStorage.MaxUploadBytes()),
		Lost:      httpHandlers.NewLostItemHandler(itemService, matchingService),
		Claims:    httpHandlers.NewClaimHandler(claimService),
		Stats:     httpHandlers.NewStatsHandler(statsService),
		Health:    healthHandler,
		WS:        httpHandlers.NewWSHandler(hub, cfg.AllowedOrigins),
		Seed:      httpHandlers.NewSeedHandler(seedService),
	}, httpRouter.Deps{
		Tokens:         tokenManager,
		RateLimitStore: rateLimitStore,
		Gatherer:       registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			mainLog.WithError(err).Error("ошибка остановки http сервера")
		}
	}()

	mainLog.WithField("port", cfg.HTTPPort).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		mainLog.Fatalf("сервер завершился с ошибкой: %v", err)
	}
}

func redisPrefix(c *redis.Client) string {
	if c == nil {
		return ""
	}
	return c.RateLimitPrefix()
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
