// Command pawbook runs the PawBook HTTP API.
//
// @title                       PawBook API
// @version                     1.0
// @description                 Pet health records with vet-verified vaccinations, QR handoff, and ownership transfer.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/config"
	httpapi "github.com/apisada-prim/pawbook/internal/http"
	"github.com/apisada-prim/pawbook/internal/observability"
	"github.com/apisada-prim/pawbook/internal/repo"
	"github.com/apisada-prim/pawbook/internal/storage"
	"github.com/apisada-prim/pawbook/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// idempotencyPurgeEvery is how often expired Idempotency-Key records are dropped.
const idempotencyPurgeEvery = time.Hour

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Warn().Err(err).Msg("could not read .env")
	}
	cfg := config.MustLoad()

	sysutil.ConfigureLogging(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		log.Warn().Msg("JWT_SECRET is the development default; set it before exposing this server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup")
	}

	db := mustOpenDB(ctx, cfg)
	files := mustOpenStorage(ctx, cfg)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, files, cfg)

	go purgeIdempotency(ctx, db)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("pawbook listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func mustOpenDB(ctx context.Context, cfg config.Config) *gorm.DB {
	dsn := cfg.DBPath
	if cfg.DBDriver == "postgres" {
		dsn = cfg.DatabaseURL
	}
	db, err := repo.Open(cfg.DBDriver, dsn)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	if cfg.OTEL.Enabled {
		if err := repo.Instrument(db); err != nil {
			log.Fatal().Err(err).Msg("instrument database")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}
	if cfg.SeedCatalog {
		if err := repo.RunSeeds(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("seed vaccine catalog")
		}
	}
	return db
}

func mustOpenStorage(ctx context.Context, cfg config.Config) storage.FileStore {
	switch cfg.Storage.Backend {
	case "minio":
		m := cfg.Storage.Minio
		store, err := storage.NewMinio(ctx, storage.MinioOptions{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			UseSSL:    m.UseSSL,
			Region:    m.Region,
		})
		if err != nil {
			log.Fatal().Err(err).Str("endpoint", m.Endpoint).Msg("connect object store")
		}
		return store
	default:
		store, err := storage.NewDisk(cfg.Storage.UploadDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.Storage.UploadDir).Msg("open upload dir")
		}
		return store
	}
}

func purgeIdempotency(ctx context.Context, db *gorm.DB) {
	t := time.NewTicker(idempotencyPurgeEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now)
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency keys")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("purged idempotency keys")
			}
		}
	}
}
