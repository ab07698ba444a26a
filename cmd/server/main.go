package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/annel0/caaluza/internal/api"
	"github.com/annel0/caaluza/internal/cache"
	"github.com/annel0/caaluza/internal/config"
	"github.com/annel0/caaluza/internal/eventbus"
	"github.com/annel0/caaluza/internal/generator"
	"github.com/annel0/caaluza/internal/logging"
	"github.com/annel0/caaluza/internal/observability"
	"github.com/annel0/caaluza/internal/storage"
	"github.com/annel0/caaluza/internal/validation"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или ENV CAALUZA_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if cfg.Logging.Dir != "" {
		logging.LogDir = cfg.Logging.Dir
	}
	logging.GetLoggerManager().Configure(cfg.Logging.File, level)
	if cfg.Logging.File {
		if err := logging.InitDefaultLogger("server"); err != nil {
			log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
		}
	}
	logging.Default().SetLevels(level, logging.TRACE)
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🧱 Запуск сервиса карт caaluza")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Сервис остановлен")
}

func run(ctx context.Context, cfg *config.Config) error {
	// === ТРАССИРОВКА ===
	shutdownTracing := observability.Noop()
	if cfg.Telemetry.Enabled {
		fn, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			logging.Warn("трассировка отключена: %v", err)
		} else {
			shutdownTracing = fn
		}
	}

	// === ХРАНИЛИЩЕ ===
	store, err := storage.Open(storage.Options{
		Backend:  cfg.Storage.Backend,
		Path:     cfg.Storage.Path,
		Compress: cfg.Storage.Compress,
		DSN:      cfg.Storage.DSN,
		Mongo: storage.MongoConfig{
			URI:        cfg.Storage.Mongo.URI,
			Database:   cfg.Storage.Mongo.Database,
			Collection: cfg.Storage.Mongo.Collection,
		},
	})
	if err != nil {
		return err
	}
	logging.Info("💾 Хранилище: %s", cfg.Storage.Backend)

	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.Config{
			RedisURL:      cfg.Cache.RedisURL,
			RedisPassword: cfg.Cache.RedisPassword,
			RedisDB:       cfg.Cache.RedisDB,
			DefaultTTL:    cfg.Cache.TTL,
		})
		if err != nil {
			logging.Warn("Redis недоступен, кеш отключён: %v", err)
		} else {
			store = cache.NewCachedStore(store, redisCache, cfg.Cache.TTL)
			logging.Info("⚡ Кеш Redis: %s", cfg.Cache.RedisURL)
		}
	}
	defer store.Close()

	// === ШИНА СОБЫТИЙ ===
	var bus eventbus.EventBus
	if cfg.EventBus.Backend == "jetstream" {
		retention := time.Duration(cfg.EventBus.Retention) * time.Hour
		bus, err = eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream, retention)
		if err != nil {
			return err
		}
		logging.Info("📨 Шина событий: JetStream %s", cfg.EventBus.URL)
	} else {
		bus = eventbus.NewMemoryBus(cfg.EventBus.Capacity)
	}
	defer bus.Close()

	if _, err := eventbus.StartLoggingListener(ctx, bus); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	exporter, err := eventbus.NewMetricsExporter(bus, registry)
	if err != nil {
		return err
	}
	exporter.Start()
	defer exporter.Stop()

	// === REST API ===
	bounds := cfg.Grid.Bounds()
	server, err := api.NewRestServer(api.Config{
		Addr:        cfg.Server.Addr(),
		Store:       store,
		Validator:   validation.NewEngine(),
		Generator:   generator.NewWithBounds(bounds),
		Bus:         bus,
		Registry:    registry,
		CORSOrigins: cfg.Server.CORSOrigins,
		Bounds:      bounds,
	})
	if err != nil {
		return err
	}

	logging.Info("   🌐 REST API: http://%s", server.Addr())
	logging.Info("   ❤️  Health check: http://%s/health", server.Addr())
	logging.Info("   📈 Метрики: http://%s/metrics", server.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("📡 Завершение работы...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Error("остановка REST API: %v", err)
		}
		return shutdownTracing(shutdownCtx)
	})
	return g.Wait()
}
