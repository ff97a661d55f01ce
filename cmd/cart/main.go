package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/notify"
	"RocketShoes/internal/slot"
	"RocketShoes/pkg/kit"
)

func main() {
	service := "cart"
	log := kit.NewLogger(service, kit.Getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	ctx, stop := kit.WithSignals(context.Background())
	defer stop()

	port := kit.Getenv("PORT", "8083")
	catalogURL := kit.Getenv("CATALOG_URL", "http://localhost:8082")

	backend, closeBackend, err := openBackend(ctx, kit.Getenv("SLOT_BACKEND", "file"))
	if err != nil {
		log.Fatal("open slot backend failed", zap.Error(err))
	}
	defer closeBackend()

	reg := prometheus.NewRegistry()

	deps := cart.RegistryDeps{
		Catalog:     cart.NewCatalogClient(catalogURL, kit.GetenvDuration("CATALOG_TIMEOUT", cart.DefaultCatalogTimeout)),
		Backend:     backend,
		Log:         log,
		Metrics:     cart.NewMetrics(reg),
		InboxSize:   kit.GetenvInt("INBOX_SIZE", notify.DefaultInboxSize),
		LoadTimeout: kit.GetenvDuration("SLOT_LOAD_TIMEOUT", cart.DefaultLoadTimeout),
	}

	if brokers := notify.ParseBrokers(kit.Getenv("KAFKA_BROKERS", "")); len(brokers) > 0 {
		k := notify.NewKafka(brokers, kit.Getenv("NOTIFY_TOPIC", notify.DefaultTopic), log)
		defer func() { _ = k.Close() }()
		deps.Notifier = func(sessionID string) cart.Notifier { return k.ForSession(sessionID) }
		log.Info("publishing notifications to kafka", zap.Strings("brokers", brokers))
	}

	s := &cart.Server{Sessions: cart.NewRegistry(deps), Log: log}

	h := cart.NewHandler(s, cart.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   kit.Getenv("METRICS_TOKEN", ""),
	})

	if err := kit.RunHTTPServer(ctx, ":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openBackend(ctx context.Context, kind string) (slot.Backend, func(), error) {
	switch kind {
	case "memory":
		return slot.NewMemory(), func() {}, nil
	case "file":
		f, err := slot.NewFile(kit.Getenv("SLOT_DIR", "./data/carts"))
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	case "redis":
		r := slot.NewRedis(kit.Getenv("REDIS_ADDR", "localhost:6379"))
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return r, func() { _ = r.Close() }, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, kit.Getenv("DATABASE_URL", ""))
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		pg := slot.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return pg, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown SLOT_BACKEND %q", kind)
	}
}
