package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/cache"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/cart"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/config"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/events"
	h "github.com/genilson28/ESPETINHO-ZEFINHA/internal/http"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/localstore"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/metrics"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/remote"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/stores"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/syncqueue"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local store is the source of truth; without it the terminal cannot run.
	local, err := localstore.NewPebbleStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to open local store")
	}
	defer local.Close()

	// The backend is optional at startup. A terminal that boots offline keeps
	// working against local state until the monitor sees the backend again.
	db, err := remote.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Warn().Err(err).Msg("backend unreachable at startup, running offline")
		db, err = remote.OpenMongoDB(cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid MongoDB configuration")
		}
	} else {
		if err := remote.CreateIndexes(ctx, db); err != nil {
			log.Warn().Err(err).Msg("failed to create indexes")
		}
		log.Info().Str("uri", cfg.MongoURI).Msg("connected to MongoDB")
	}
	backend := remote.NewBreakerBackend(remote.NewMongoBackend(db))

	// Snapshot reads go through Redis when it is available; otherwise straight
	// to the backend.
	var snapshots remote.SnapshotStore = backend
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, snapshot cache disabled")
	} else {
		snapshots = cache.NewCachedSnapshotStore(backend, cache.NewRedisCache(redisClient))
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis snapshot cache enabled")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer kp.Close()
		publisher = kp
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("kafka event publisher enabled")
	}

	reg := metrics.NewRegistry()

	engine, err := cart.NewEngine(local, snapshots, publisher, reg, cart.Options{
		Debounce: cfg.SyncDebounce,
		Expiry:   cfg.CartExpiry,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to restore cart sessions")
	}
	defer engine.Close()

	queue := syncqueue.NewQueue(local, backend, reg)
	monitor := syncqueue.NewMonitor(queue, backend, cfg.MonitorInterval)
	go monitor.Run(ctx)
	go engine.StartSweeper(ctx, cfg.SweepInterval)

	tableStore := stores.NewTableStore(queue, backend)
	productStore := stores.NewProductStore(queue, backend)
	orderStore := stores.NewOrderStore(queue, backend)
	for name, store := range map[string]interface {
		Fetch(context.Context) error
	}{
		"tables":   tableStore,
		"products": productStore,
		"orders":   orderStore,
	} {
		if err := store.Fetch(ctx); err != nil {
			log.Warn().Err(err).Str("collection", name).Msg("initial fetch failed")
		}
	}

	router := h.NewRouter(
		h.NewCartHandler(engine, cfg.RequestTimeout),
		h.NewCheckoutHandler(engine, orderStore, tableStore, cfg.RequestTimeout),
		h.NewSyncHandler(queue, engine, cfg.RequestTimeout),
		reg.Handler(),
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("terminal service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// One last replay so edits made moments before shutdown are not stranded
	// until the next boot.
	queue.Flush(shutdownCtx)

	if err := db.Client().Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect failed")
	}
	log.Info().Msg("terminal service stopped")
}
