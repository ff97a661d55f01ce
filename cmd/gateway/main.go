package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/internal/gateway"
	"RocketShoes/internal/session"
	"RocketShoes/pkg/kit"
)

const minSecretLen = 32

func main() {
	service := "gateway"
	log := kit.NewLogger(service, kit.Getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	ctx, stop := kit.WithSignals(context.Background())
	defer stop()

	port := kit.Getenv("PORT", "8080")

	jwtSecret := kit.Getenv("JWT_SECRET", "")
	if len(jwtSecret) < minSecretLen {
		log.Fatal("JWT_SECRET is required and must be at least 32 chars")
	}

	deps := gateway.Deps{
		JWTSecret:  jwtSecret,
		CatalogURL: kit.Getenv("CATALOG_URL", "http://catalog:8082"),
		CartURL:    kit.Getenv("CART_URL", "http://cart:8083"),
		SessionTTL: kit.GetenvDuration("SESSION_TTL", session.DefaultTTL),
	}

	h, err := gateway.NewHandler(deps, gateway.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: true,
		MetricsToken:   kit.Getenv("METRICS_TOKEN", ""),
	})
	if err != nil {
		log.Fatal("init gateway handler failed", zap.Error(err))
	}

	log.Info("gateway configured",
		zap.String("catalog_url", deps.CatalogURL),
		zap.String("cart_url", deps.CartURL),
		zap.Duration("session_ttl", deps.SessionTTL.Round(time.Second)),
	)

	if err := kit.RunHTTPServer(ctx, ":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
