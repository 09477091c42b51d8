package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/config"
	"github.com/apisada-prim/pawbook/internal/repo"
	"github.com/apisada-prim/pawbook/internal/storage"
)

// newTestDB opens a migrated on-disk SQLite database under t.TempDir().
// A file (rather than shared memory) keeps BEGIN IMMEDIATE semantics real.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		GinMode:     gin.TestMode,
		APIBasePath: "/api/v1",
		RateRPS:     1000,
		RateBurst:   1000,
		CORS:        config.CORSConfig{AllowedOrigins: nil},
		Security:    config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
		Auth: config.AuthConfig{
			JWTSecret:      "router-test-secret",
			AccessTokenTTL: time.Hour,
			QRTokenSecret:  "router-test-qr-secret",
		},
		Handoff: config.HandoffConfig{
			QRSessionTTL:    15 * time.Minute,
			TransferCodeTTL: 24 * time.Hour,
			RedeemPerMin:    600,
			RedeemBurst:     100,
		},
		Storage: config.StorageConfig{
			Backend:       "disk",
			MaxBytes:      1 << 20,
			PublicBaseURL: "http://files.test",
		},
		IdempotencyTTL: time.Hour,
	}
}

// newTestServer wires the full router against a fresh database and a disk
// store in a temp dir.
func newTestServer(t *testing.T, cfg config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	files, err := storage.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}
	r := gin.New()
	RegisterRoutes(r, db, files, cfg)
	return r, db
}

type reqOpt func(*http.Request)

func withToken(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

// call performs a request; a non-nil body is JSON encoded unless it is
// already an io.Reader.
func call(t *testing.T, r http.Handler, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		rd = b
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if _, isJSON := body.(io.Reader); body != nil && !isJSON {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body=%s)", v, err, w.Body.String())
	}
	return v
}

type sessionBody struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID string `json:"id"`
	} `json:"user"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// register signs up an owner (or a vet when license is non-empty) and
// returns its token and user id.
func register(t *testing.T, r http.Handler, email, license string) (token, userID string) {
	t.Helper()
	body := map[string]any{
		"email":     email,
		"password":  "correct horse",
		"full_name": email,
	}
	if license != "" {
		body["role"] = "vet"
		body["license_number"] = license
		body["clinic_name"] = "Happy Paws"
	}
	w := call(t, r, http.MethodPost, "/api/v1/auth/register", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s = %d %s", email, w.Code, w.Body.String())
	}
	s := decode[sessionBody](t, w)
	return s.AccessToken, s.User.ID
}

// createPet registers a dog for the token's user and returns its id.
func createPet(t *testing.T, r http.Handler, token, name string) string {
	t.Helper()
	w := call(t, r, http.MethodPost, "/api/v1/pets", map[string]any{
		"name":       name,
		"species":    "dog",
		"birth_date": "2022-05-01T00:00:00Z",
	}, withToken(token))
	if w.Code != http.StatusCreated {
		t.Fatalf("create pet = %d %s", w.Code, w.Body.String())
	}
	return decode[struct {
		ID string `json:"id"`
	}](t, w).ID
}
