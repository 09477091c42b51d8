package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/apisada-prim/pawbook/internal/sysutil"
)

// LoadDotEnv preloads variables from the given files (".env" when none are
// passed). Missing files are ignored; variables already present in the
// environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// MustLoad is Load for main: an invalid environment is a startup bug.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load resolves the configuration from the environment. Every malformed or
// out-of-range variable is reported, joined into one error.
func Load() (Config, error) {
	var e env
	jwtSecret := e.str("JWT_SECRET", DefaultJWTSecret)

	cfg := Config{
		Port:              e.str("PORT", "8080"),
		ReadTimeout:       e.duration("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: e.duration("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      e.duration("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       e.duration("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    e.integer("MAX_HEADER_BYTES", 1<<20),
		GinMode:           ginMode(e.lower("GIN_MODE", "release")),

		LogLevel:       logLevel(e.lower("LOG_LEVEL", "info")),
		LogPretty:      e.flag("LOG_PRETTY", false),
		SwaggerEnabled: e.flag("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(e.str("API_BASE_PATH", "/api/v1")),

		DBDriver:    dbDriver(e.lower("DB_DRIVER", "sqlite")),
		DBPath:      e.str("DB_PATH", "pawbook.db"),
		DatabaseURL: e.str("DATABASE_URL", ""),
		SeedCatalog: e.flag("SEED_CATALOG", true),

		Auth: AuthConfig{
			JWTSecret:      jwtSecret,
			AccessTokenTTL: e.duration("ACCESS_TOKEN_TTL", 24*time.Hour),
			QRTokenSecret:  sysutil.FirstNonEmpty(os.Getenv("QR_TOKEN_SECRET"), jwtSecret),
		},
		Handoff: HandoffConfig{
			QRSessionTTL:    e.duration("QR_SESSION_TTL", 15*time.Minute),
			TransferCodeTTL: e.duration("TRANSFER_CODE_TTL", 24*time.Hour),
			RedeemPerMin:    e.number("HANDOFF_RATE_PER_MIN", 10),
			RedeemBurst:     e.integer("HANDOFF_RATE_BURST", 5),
		},
		Storage: StorageConfig{
			Backend:       e.lower("STORAGE_BACKEND", "disk"),
			UploadDir:     e.str("UPLOAD_DIR", "uploads"),
			MaxBytes:      int64(e.integer("UPLOAD_MAX_BYTES", 10<<20)),
			PublicBaseURL: strings.TrimRight(e.str("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
			Minio: MinioConfig{
				Endpoint:  e.str("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: e.str("MINIO_ACCESS_KEY", ""),
				SecretKey: e.str("MINIO_SECRET_KEY", ""),
				Bucket:    e.str("MINIO_BUCKET", "pawbook"),
				UseSSL:    e.flag("MINIO_USE_SSL", false),
				Region:    e.str("MINIO_REGION", ""),
			},
		},

		RateRPS:   e.number("RATE_RPS", 5),
		RateBurst: e.integer("RATE_BURST", 10),

		CORS: CORSConfig{AllowedOrigins: splitCSV(e.str("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: e.flag("ENABLE_HSTS", false),
			HSTSMaxAge: e.duration("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: e.duration("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     e.flag("OTEL_ENABLED", false),
			Endpoint:    e.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    e.flag("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: e.str("OTEL_SERVICE_NAME", "pawbook"),
			SampleRatio: e.number("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}

	errs := append(e.errs, cfg.validate()...)
	return cfg, errors.Join(errs...)
}

func (c Config) validate() []error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	check(c.LogLevel != "", "LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	check(strings.TrimSpace(c.Port) != "", "PORT must not be empty")
	check(c.ReadTimeout > 0 && c.ReadHeaderTimeout > 0 && c.WriteTimeout > 0 && c.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	switch c.DBDriver {
	case "sqlite":
		check(strings.TrimSpace(c.DBPath) != "", "DB_PATH must not be empty")
	case "postgres":
		check(strings.TrimSpace(c.DatabaseURL) != "", "DATABASE_URL is required when DB_DRIVER=postgres")
	default:
		check(false, "DB_DRIVER must be one of: sqlite, postgres")
	}

	check(len(c.Auth.JWTSecret) >= 16, "JWT_SECRET must be at least 16 bytes")
	check(len(c.Auth.QRTokenSecret) >= 16, "QR_TOKEN_SECRET must be at least 16 bytes")
	check(c.Auth.AccessTokenTTL > 0, "ACCESS_TOKEN_TTL must be > 0")
	check(c.Handoff.QRSessionTTL > 0 && c.Handoff.TransferCodeTTL > 0, "QR_SESSION_TTL and TRANSFER_CODE_TTL must be > 0")
	check(c.Handoff.RedeemPerMin > 0 && c.Handoff.RedeemBurst >= 1, "HANDOFF_RATE_PER_MIN must be > 0 and HANDOFF_RATE_BURST >= 1")

	switch c.Storage.Backend {
	case "disk":
		check(strings.TrimSpace(c.Storage.UploadDir) != "", "UPLOAD_DIR must not be empty")
	case "minio":
		m := c.Storage.Minio
		check(m.AccessKey != "" && m.SecretKey != "" && m.Bucket != "",
			"MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_BUCKET are required when STORAGE_BACKEND=minio")
	default:
		check(false, "STORAGE_BACKEND must be one of: disk, minio")
	}
	check(c.Storage.MaxBytes > 0, "UPLOAD_MAX_BYTES must be > 0")

	check(c.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(c.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	return errs
}

// env reads typed variables, falling back to the default when a variable
// is unset or empty and recording an error when it does not parse.
type env struct {
	errs []error
}

func (e *env) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
}

func (e *env) bad(k, v, want string) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q is not a valid %s", k, v, want))
}

func (e *env) str(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func (e *env) lower(k, def string) string {
	return strings.ToLower(strings.TrimSpace(e.str(k, def)))
}

func (e *env) integer(k string, def int) int {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.bad(k, v, "integer")
		return def
	}
	return n
}

func (e *env) number(k string, def float64) float64 {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.bad(k, v, "number")
		return def
	}
	return f
}

func (e *env) duration(k string, def time.Duration) time.Duration {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.bad(k, v, "duration")
		return def
	}
	return d
}

func (e *env) flag(k string, def bool) bool {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	if sysutil.IsTruthy(v) {
		return true
	}
	switch strings.ToLower(v) {
	case "0", "false", "no", "n", "off":
		return false
	}
	e.bad(k, v, "boolean")
	return def
}

// logLevel canonicalises a level name; "" marks it invalid.
func logLevel(s string) string {
	switch s {
	case "warning":
		return "warn"
	case "debug", "info", "warn", "error", "fatal", "panic":
		return s
	}
	return ""
}

// ginMode maps unknown modes to release.
func ginMode(s string) string {
	switch s {
	case "debug", "release", "test":
		return s
	}
	return "release"
}

func dbDriver(s string) string {
	if s == "postgresql" {
		return "postgres"
	}
	return s
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath returns p with one leading slash and no trailing one,
// or "/" for an empty path.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
