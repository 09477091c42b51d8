// Package config loads PawBook settings from the environment (optionally
// seeded from a .env file) and validates them before the server starts.
package config

import (
	"time"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. It is fine for local
// development only; main logs a warning when it is in effect.
const DefaultJWTSecret = "pawbook-dev-secret-change-me"

type CORSConfig struct {
	AllowedOrigins []string
}

type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig points the trace exporter at an OTLP/gRPC collector.
type OTELConfig struct {
	Enabled     bool
	Endpoint    string // host:port
	Insecure    bool   // plaintext gRPC
	ServiceName string
	SampleRatio float64 // [0,1]
}

// AuthConfig controls access tokens and vaccine QR token signing.
type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	QRTokenSecret  string // falls back to JWTSecret
}

// HandoffConfig holds the lifetimes of the two handoff capabilities and the
// per-caller budget for the endpoints that redeem guessable codes.
type HandoffConfig struct {
	QRSessionTTL    time.Duration
	TransferCodeTTL time.Duration
	RedeemPerMin    float64
	RedeemBurst     int
}

// MinioConfig describes the object store used when StorageBackend is "minio".
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

// StorageConfig selects where uploaded images live.
type StorageConfig struct {
	Backend       string // disk|minio
	UploadDir     string
	MaxBytes      int64
	PublicBaseURL string // prefix for returned file URLs
	Minio         MinioConfig
}

// Config is the fully resolved process configuration.
type Config struct {
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string

	DBDriver    string // sqlite|postgres
	DBPath      string
	DatabaseURL string
	SeedCatalog bool // apply catalog seed migrations on boot

	Auth    AuthConfig
	Handoff HandoffConfig
	Storage StorageConfig

	// General per-caller limit; handoff redemption has its own in Handoff.
	RateRPS   float64
	RateBurst int

	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration

	OTEL OTELConfig
}
