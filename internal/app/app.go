// Package app builds the dependency graph shared by the HTTP server and the CLI.
package app

import (
	"context"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/config"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/infra"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/repository"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Store is what the pipeline needs from object storage, plus a health probe.
type Store interface {
	service.Almacenamiento
	repository.BlobWriter
	Ping(ctx context.Context, bucket string) error
}

// App holds the wired services. Redis is nil when the runs index is disabled.
type App struct {
	Cfg    *config.Config
	Holded *infra.HoldedClient
	Store  Store
	Redis  *redis.Client

	Ejecuciones   repository.EjecucionRepository
	HoldedSvc     service.HoldedService
	Actualizacion service.ActualizacionService
	CSV           service.CSVService

	closers []func() error
}

// New wires the graph. Missing GCS credentials or an unreachable Redis degrade
// the app instead of failing startup.
func New(ctx context.Context, cfg *config.Config) *App {
	a := &App{Cfg: cfg}

	cb := infra.NewCircuitBreaker("holded", infra.DefaultCBConfig())
	a.Holded = infra.NewHoldedClient(infra.HoldedConfig{
		BaseURL:         cfg.HoldedAPIURL,
		APIKey:          cfg.HoldedAPIKey,
		Timeout:         cfg.HoldedTimeout(),
		ProductsTimeout: cfg.HoldedProductsTimeout(),
		UpdateTimeout:   cfg.HoldedUpdateTimeout(),
		RateLimitRPS:    cfg.HoldedRateLimitRPS,
	}, cb)
	if !a.Holded.Configurado() {
		log.Warn().Msg("HOLDED_API_KEY not set: stock operations will fail")
	}

	gcs, err := infra.NewGCSStore(ctx, cfg.GCSCredentialsBase64)
	if err != nil {
		log.Warn().Err(err).Msg("GCS disabled")
		a.Store = infra.StoreNoConfigurado{}
	} else {
		a.Store = gcs
		a.closers = append(a.closers, gcs.Close)
	}

	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable: recent-runs index disabled")
		} else {
			a.Redis = rdb
			a.closers = append(a.closers, rdb.Close)
		}
	}

	a.Ejecuciones = repository.NewEjecucionRepository(a.Store, a.Redis)
	a.HoldedSvc = service.NewHoldedService(a.Holded, a.Holded)
	auditoria := service.NuevaAuditoria(a.Ejecuciones, cfg.GCSBucketName)
	a.Actualizacion = service.NewActualizacionService(a.Holded, a.Store, auditoria, cfg.HoldedCaceresFallbackWarehouse)
	a.CSV = service.NewCSVService(a.Holded)
	return a
}

// Close releases storage and redis clients.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}
