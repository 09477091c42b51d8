// Package httpapi assembles the PawBook HTTP server: the middleware chain,
// service construction, and the /api/v1 route table for accounts, pets,
// vaccinations, QR handoff sessions, transfer codes, families and uploads.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/docs"
	"github.com/apisada-prim/pawbook/internal/auth"
	"github.com/apisada-prim/pawbook/internal/config"
	"github.com/apisada-prim/pawbook/internal/http/handlers"
	"github.com/apisada-prim/pawbook/internal/http/middleware"
	"github.com/apisada-prim/pawbook/internal/repo"
	"github.com/apisada-prim/pawbook/internal/services"
	"github.com/apisada-prim/pawbook/internal/storage"
)

// defaultBodyLimit caps JSON request bodies. Uploads carry their own cap.
const defaultBodyLimit = 1 << 20

// RegisterRoutes installs the middleware chain, /health, /metrics and the
// API under cfg.APIBasePath on r. The numbered steps below run in order;
// replay detection (8) must precede rate limiting (9) so replays bypass it.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, files storage.FileStore, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	uploadPath := joinPath(api.BasePath(), "/uploads")
	filesPath := joinPath(api.BasePath(), "/uploads/files")

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Access log; PII scrubbing outside local debugging
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		ScrubPII:    cfg.GinMode != gin.DebugMode,
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB); the upload handler applies its own
	r.Use(limitBody(defaultBodyLimit, uploadPath))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Identity
	tokens := auth.NewAccessTokens(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	r.Use(middleware.Authenticate(tokens))

	// 8) Idempotency-Key validation and replay detection (before rate limiting)
	r.Use(middleware.IdempotencyValidator(middleware.DefaultIdempotencyKeyLen,
		func(ctx context.Context, userID, scope, key string) (bool, error) {
			_, err := repo.GetIdempotency(ctx, db, userID, scope, key, time.Now().UTC())
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			return err == nil, err
		},
	))

	// 9) Token buckets per user/IP; code redemption gets its own tighter budget
	redeem := middleware.PerMinute(cfg.Handoff.RedeemPerMin, cfg.Handoff.RedeemBurst)
	rl := middleware.NewRateLimiter(
		middleware.RatePolicy{PerSecond: cfg.RateRPS, Burst: cfg.RateBurst},
		middleware.KeyByUserOrIP(),
	).
		Limit(http.MethodPost, joinPath(apiBase, "/pets/claim"), redeem).
		Limit(http.MethodPost, joinPath(apiBase, "/vaccine-qr/verify"), redeem)
	r.Use(rl.Handler())

	// 10) Compression; images and metrics are left alone
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", filesPath})))

	// 11) CORS: any origin unless an allow list is configured
	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey, "If-None-Match"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// 12) Security headers; HSTS only over HTTPS
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = api.BasePath()
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/signers
	signer := auth.NewQrSigner(cfg.Auth.QRTokenSecret)
	h := handlers.New(handlers.Deps{
		Auth:     &services.AuthService{DB: db, Tokens: tokens},
		Pets:     &services.PetService{DB: db, TransferTTL: cfg.Handoff.TransferCodeTTL},
		Qr:       &services.QrService{DB: db, Signer: signer, TTL: cfg.Handoff.QRSessionTTL},
		Vaccines: &services.VaccineService{DB: db, Signer: signer},
		Families: &services.FamilyService{DB: db},

		DB:             db,
		Files:          files,
		UploadMaxBytes: cfg.Storage.MaxBytes,
		PublicBaseURL:  cfg.Storage.PublicBaseURL,
		FilesPath:      filesPath,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	// Public API
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		api.GET("/vaccines", h.ListVaccines)
		api.GET("/public/pets/:id/card", h.PublicPetCard)
		api.GET("/uploads/files/:name", h.ServeUpload)
	}

	// Authenticated API
	authed := api.Group("", middleware.RequireAuth())
	{
		authed.GET("/auth/me", h.Me)

		// Pets
		authed.POST("/pets", h.CreatePet)
		authed.GET("/pets", h.ListPets)
		authed.GET("/pets/alumni", h.ListAlumniPets)
		authed.GET("/pets/:id", h.GetPet)
		authed.PUT("/pets/:id", h.UpdatePet)
		authed.DELETE("/pets/:id", h.DeletePet)
		authed.POST("/pets/:id/co-owners", h.AddCoOwner)
		authed.DELETE("/pets/:id/co-owners/:userId", h.RemoveCoOwner)

		// Transfers
		authed.POST("/pets/:id/transfer-code", h.GenerateTransferCode)
		authed.DELETE("/pets/:id/transfer-code", h.CancelTransferCode)
		authed.POST("/pets/claim", h.ClaimPet)

		// Vaccine QR and records
		authed.POST("/pets/:id/vaccine-qr", h.GenerateVaccineQr)
		authed.POST("/vaccine-qr/verify", h.VerifyVaccineQr)
		authed.GET("/vaccine-qr/status", h.VaccineQrStatus)
		authed.POST("/vaccinations", h.CreateVaccineRecord)
		authed.GET("/pets/:id/vaccinations", h.ListPetVaccinations)
		authed.POST("/pets/:id/vaccinations/legacy", h.CreateLegacyRecord)

		// Families
		authed.GET("/families/mine", h.MyFamilies)
		authed.PUT("/families/mine/name", h.RenameFamily)
		authed.POST("/families/mine/members", h.InviteFamilyMember)
		authed.DELETE("/families/mine/members/:userId", h.RemoveFamilyMember)
		authed.POST("/families/:id/leave", h.LeaveFamily)

		// Uploads
		authed.POST("/uploads", h.UploadImage)
	}
}

// limitBody returns a Gin middleware that caps the request body size to
// maxBytes using http.MaxBytesReader. Requests exceeding the cap will cause
// downstream body reads to error. Routes whose full path is listed in exempt
// are skipped.
func limitBody(maxBytes int64, exempt ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; !ok {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// joinPath appends suffix to a group base path without doubling slashes.
func joinPath(base, suffix string) string {
	if base == "/" {
		return suffix
	}
	return base + suffix
}
