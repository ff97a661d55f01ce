package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/internal/catalog"
	"RocketShoes/pkg/kit"
)

func main() {
	service := "catalog"
	log := kit.NewLogger(service, kit.Getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	ctx, stop := kit.WithSignals(context.Background())
	defer stop()

	port := kit.Getenv("PORT", "8082")

	store, closeStore, err := openStore(kit.Getenv("DATABASE_URL", ""), log)
	if err != nil {
		log.Fatal("open catalog store failed", zap.Error(err))
	}
	defer closeStore()

	h := catalog.NewHandler(&catalog.Server{Store: store, Log: log}, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: true,
		MetricsToken:   kit.Getenv("METRICS_TOKEN", ""),
	})

	if err := kit.RunHTTPServer(ctx, ":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(dsn string, log *zap.Logger) (catalog.Store, func(), error) {
	if dsn == "" {
		log.Info("DATABASE_URL not set, serving the demo catalog from memory")
		return catalog.NewSeededMemStore(), func() {}, nil
	}

	db, err := catalog.OpenPostgres(dsn)
	if err != nil {
		return nil, nil, err
	}
	return catalog.NewPostgresStore(db), func() { _ = db.Close() }, nil
}
