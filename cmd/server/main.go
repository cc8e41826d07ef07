// Package main - точка входа для HTTP API приложения CyberMatch Hub.
//
// CyberMatch Hub подбирает менторов для IT-специалистов: оценивает
// совместимость пар, ранжирует кандидатов, ведёт сессии подбора
// "по одному кандидату за раз" и workflow запросов на менторство.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/Sagas)
// - Infrastructure: реализация репозиториев, внешние API
// - Interface: HTTP endpoints
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cybermatch/cybermatch-hub/config"

	// Application layer
	"github.com/cybermatch/cybermatch-hub/internal/application/command"
	"github.com/cybermatch/cybermatch-hub/internal/application/eventhandler"
	"github.com/cybermatch/cybermatch-hub/internal/application/query"
	"github.com/cybermatch/cybermatch-hub/internal/application/saga"

	// Domain layer
	"github.com/cybermatch/cybermatch-hub/internal/domain/block"
	"github.com/cybermatch/cybermatch-hub/internal/domain/matching"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"

	// Infrastructure layer
	"github.com/cybermatch/cybermatch-hub/internal/infrastructure/external/matchrpc"
	"github.com/cybermatch/cybermatch-hub/internal/infrastructure/messaging"
	"github.com/cybermatch/cybermatch-hub/internal/infrastructure/persistence/postgres"
	"github.com/cybermatch/cybermatch-hub/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/cybermatch/cybermatch-hub/internal/interface/http"
	"github.com/cybermatch/cybermatch-hub/internal/interface/http/handlers"

	// Packages
	"github.com/cybermatch/cybermatch-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

// rollbackLastMigration откатывает последнюю применённую миграцию
// вместо запуска сервера.
var rollbackLastMigration bool

func main() {
	flag.BoolVar(&rollbackLastMigration, "rollback-last-migration", false,
		"roll back the last applied database migration and exit")
	flag.Parse()

	// Создаём корневой контекст с возможностью отмены
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем приложение
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	// .env необязателен: в production переменные приходят из окружения
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting CyberMatch Hub",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	migrator := postgres.NewMigrator(dbConn)

	// Аварийный рычаг для операторов: откатить последнюю миграцию и выйти.
	if rollbackLastMigration {
		log.Warn("rolling back the last applied migration...")
		if err := migrator.Rollback(ctx); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Info("rollback completed")
		return nil
	}

	log.Info("running database migrations...")
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		log.Warn("failed to get migration status", "error", err)
	} else {
		appliedCount := 0
		for _, m := range status {
			if m.IsApplied {
				appliedCount++
			}
		}
		log.Info("migrations completed", "applied", appliedCount, "total", len(status))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			log.Info("Redis connection established")
		}
	}

	// Кеши объявлены через интерфейсы: выключенный кеш - это nil-интерфейс,
	// обработчики обязаны это переживать.
	var matchCache query.MatchCache
	var pendingCounts query.PendingCounts
	var requestCache *redis.RequestCache

	if redisCache != nil {
		if cfg.Features.IsEnabled(config.FeatureMatchingResultCache, nil) {
			matchCache = redis.NewMatchCache(redisCache)
		}
		if cfg.Features.IsEnabled(config.FeatureMentorshipPendingCounts, nil) {
			requestCache = redis.NewRequestCache(redisCache)
			pendingCounts = requestCache
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	profileRepo := postgres.NewProfileRepository(dbConn)
	mentorshipRepo := postgres.NewMentorshipRepository(dbConn)
	blockRepo := postgres.NewBlockRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")

	localBusConfig := messaging.DefaultInMemoryEventBusConfig()
	localBusConfig.Logger = log

	var eventBus shared.EventBus
	if redisCache != nil {
		// Redis-шина рассылает события всем инстансам: инвалидация кеша
		// доезжает до каждого узла.
		redisBus, busErr := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         newRedisBusClient(redisCache),
			LocalBusConfig: localBusConfig,
			Logger:         log,
		})
		if busErr != nil {
			log.Warn("failed to start Redis event bus, using in-memory", "error", busErr)
			eventBus = messaging.NewInMemoryEventBus(localBusConfig)
		} else {
			eventBus = redisBus
		}
	} else {
		eventBus = messaging.NewInMemoryEventBus(localBusConfig)
	}
	defer func() {
		log.Info("closing event bus...")
		if closer, ok := eventBus.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	dispatcher := messaging.NewDispatcher(messaging.DefaultDispatcherConfig(eventBus))
	dispatcher.Use(messaging.RecoveryMiddleware(log))
	dispatcher.Use(messaging.LoggingMiddleware(log))

	if matchCache != nil {
		blockChanged := eventhandler.NewOnBlockChangedHandler(matchCache, log)
		for _, eventType := range []shared.EventType{shared.EventPartyBlocked, shared.EventPartyUnblocked} {
			if err := dispatcher.Register(eventType, "invalidate-match-cache", blockChanged.Handle); err != nil {
				return fmt.Errorf("failed to register block handler: %w", err)
			}
		}
	}

	if requestCache != nil {
		answered := eventhandler.NewOnMentorshipAnsweredHandler(requestCache, log)
		for _, eventType := range []shared.EventType{
			shared.EventMentorshipRequested,
			shared.EventMentorshipAccepted,
			shared.EventMentorshipDeclined,
		} {
			if err := dispatcher.Register(eventType, "invalidate-pending-counts", answered.Handle); err != nil {
				return fmt.Errorf("failed to register mentorship handler: %w", err)
			}
		}
	}

	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start event dispatcher: %w", err)
	}
	defer func() {
		log.Info("stopping event dispatcher...")
		_ = dispatcher.Stop()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ИНИЦИАЛИЗАЦИЯ MATCHING CORE
	// ─────────────────────────────────────────────────────────────────────────
	gate := block.NewGate(blockRepo)
	ranker := matching.NewRanker(gate)

	rankDefaults := matching.RankOptions{
		Weights: matching.Weights{
			Skill: cfg.Matching.SkillWeight,
			Role:  cfg.Matching.RoleWeight,
		},
		Threshold: cfg.Matching.DefaultThreshold,
		Limit:     cfg.Matching.DefaultLimit,
	}

	// Backend подбора: локальный ranker или удалённый RPC-сервис.
	var backend query.Backend
	var rpcClient *matchrpc.Client

	if cfg.MatchRPC.Enabled {
		rpcConfig := matchrpc.DefaultClientConfig(cfg.MatchRPC.BaseURL)
		rpcConfig.APIKey = cfg.MatchRPC.APIKey
		rpcConfig.Timeout = cfg.MatchRPC.RequestTimeout
		rpcConfig.Logger = log
		rpcClient = matchrpc.NewClient(rpcConfig)
		backend = rpcClient
		log.Info("using remote match backend", "base_url", cfg.MatchRPC.BaseURL)
	} else {
		backend = query.NewLocalBackend(profileRepo, ranker)
		log.Info("using local match backend")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries, Sagas)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	matchesQuery := query.NewGetMatchesHandler(query.GetMatchesHandlerConfig{
		Profiles: profileRepo,
		Backend:  backend,
		Cache:    matchCache,
		Defaults: rankDefaults,
		CacheTTL: cfg.Matching.CacheTTL,
	})
	requestsQuery := query.NewGetRequestsHandler(mentorshipRepo, pendingCounts)

	requestCmd := command.NewRequestMentorshipHandler(profileRepo, mentorshipRepo, gate, eventBus)
	respondCmd := command.NewRespondToRequestHandler(mentorshipRepo, gate, eventBus)
	blockCmd := command.NewSetBlockedHandler(gate, eventBus)

	sessions := saga.NewMatchSessionManager(matchesQuery, requestCmd, eventBus)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}
	if rpcClient != nil {
		healthChecker.AddCheck("match_rpc", handlers.NewExternalAPICheck(rpcClient))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	httpServer := httpserver.NewServer(httpConfig, httpserver.Dependencies{
		GetMatchesHandler:        matchesQuery,
		GetRequestsHandler:       requestsQuery,
		RequestMentorshipHandler: requestCmd,
		RespondToRequestHandler:  respondCmd,
		SetBlockedHandler:        blockCmd,
		BlockGate:                gate,
		Sessions:                 sessions,
		Logger:                   logger.Default(),
		HealthChecker:            healthChecker,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 13. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("CyberMatch Hub is running", "http_address", httpServer.Address())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		log.Warn("shutdown completed with errors")
		return nil
	}

	// Dispatcher, event bus и соединения закроются через defer
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Observability.LogLevel),
	}

	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ADAPTERS
// These adapt infrastructure implementations to messaging interfaces.
// ══════════════════════════════════════════════════════════════════════════════

// redisBusClient adapts redis.Cache Pub/Sub to messaging.RedisClient.
type redisBusClient struct {
	cache  *redis.Cache
	pubsub *goredis.PubSub
}

func newRedisBusClient(cache *redis.Cache) *redisBusClient {
	return &redisBusClient{cache: cache}
}

// Publish implements messaging.RedisClient.
func (c *redisBusClient) Publish(ctx context.Context, channel string, message interface{}) error {
	return c.cache.Publish(ctx, channel, message)
}

// Subscribe implements messaging.RedisClient.
func (c *redisBusClient) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.RedisMessage, error) {
	c.pubsub = c.cache.Subscribe(ctx, channels...)

	out := make(chan messaging.RedisMessage)
	go func() {
		defer close(out)
		for msg := range c.pubsub.Channel() {
			out <- messaging.RedisMessage{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()

	return out, nil
}

// Close implements messaging.RedisClient. The underlying cache connection
// is owned by the caller and closed separately.
func (c *redisBusClient) Close() error {
	if c.pubsub != nil {
		return c.pubsub.Close()
	}
	return nil
}
