package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogs swaps the global logger for one writing JSON lines to a buffer.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		out = append(out, m)
	}
	return out
}

func accessLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	for _, m := range logLines(t, buf) {
		if m["message"] == "http_request" {
			return m
		}
	}
	t.Fatalf("no access log line in:\n%s", buf.String())
	return nil
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/rid", func(c *gin.Context) {
		seen = c.GetString(ctxKeyRequestID)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rid", nil))
	assert.Len(t, w.Header().Get(requestIDHeader), 36, "generated uuid")
	assert.Equal(t, w.Header().Get(requestIDHeader), seen)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rid", nil)
	req.Header.Set("x-request-id", "mobile-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "mobile-42", w.Header().Get(requestIDHeader))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/rid", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", 500))
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(requestIDHeader), 36, "oversized ids are replaced")
}

func TestAccessLog_LevelsByOutcome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name    string
		handler gin.HandlerFunc
		level   string
	}{
		{"ok", func(c *gin.Context) { c.Status(http.StatusOK) }, "info"},
		{"client error", func(c *gin.Context) { c.Status(http.StatusGone) }, "warn"},
		{"server error", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) }, "error"},
		{"gin error on 4xx", func(c *gin.Context) {
			_ = c.Error(errors.New("bad token"))
			c.Status(http.StatusBadRequest)
		}, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureLogs(t)
			r := gin.New()
			r.Use(RequestID(), AccessLog(AccessLogOptions{}))
			r.GET("/pets/:id", tc.handler)

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pets/p1", nil))

			line := accessLine(t, buf)
			assert.Equal(t, tc.level, line["level"])
			assert.Equal(t, "/pets/:id", line["route"])
			assert.Equal(t, "GET", line["method"])
		})
	}
}

func TestAccessLog_MasksSecretsAlways(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RequestID(), AccessLog(AccessLogOptions{MaskHeaders: []string{"x-api-key"}}))
	r.GET("/vaccine-qr/status", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/vaccine-qr/status?token=signed.qr.value&Code=AB12CD34&pet_id=p1", nil)
	req.Header.Set("Authorization", "Bearer eyJhbGciOi")
	req.Header.Set("X-Api-Key", "k-123")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.NotContains(t, out, "signed.qr.value")
	assert.NotContains(t, out, "AB12CD34")
	assert.NotContains(t, out, "eyJhbGciOi")
	assert.NotContains(t, out, "k-123")

	line := accessLine(t, buf)
	assert.Equal(t, "token=[REDACTED]&Code=[REDACTED]&pet_id=p1", line["query"])
	headers := line["headers"].(map[string]any)
	assert.Equal(t, redacted, headers["Authorization"])
	assert.Equal(t, redacted, headers["X-Api-Key"])
}

func TestAccessLog_ScrubPII(t *testing.T) {
	gin.SetMode(gin.TestMode)
	q := "email=malee@example.com&chip=900123456789012&phone=081-234-5678&from=2026-01-10"

	for _, scrub := range []bool{false, true} {
		buf := captureLogs(t)
		r := gin.New()
		r.Use(AccessLog(AccessLogOptions{ScrubPII: scrub}))
		r.GET("/pets", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/pets?"+q, nil)
		req.Header.Set("X-Contact", "call +66 81 234 5678")
		r.ServeHTTP(httptest.NewRecorder(), req)

		line := accessLine(t, buf)
		headers := line["headers"].(map[string]any)
		if !scrub {
			assert.Equal(t, q, line["query"])
			continue
		}
		assert.Equal(t, "email=[email]&chip=[microchip]&phone=[phone]&from=2026-01-10", line["query"])
		assert.Equal(t, "call [phone]", headers["X-Contact"])
	}
}

func TestAccessLog_ContextLoggerCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RequestID(), AccessLog(AccessLogOptions{}))
	r.POST("/pets/claim", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("from service")
		LoggerFrom(c).Info().Msg("from handler")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/pets/claim", nil)
	req.Header.Set(requestIDHeader, "rid-ctx")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, buf)
	require.Len(t, lines, 3)
	for _, m := range lines {
		assert.Equal(t, "rid-ctx", m["request_id"], m["message"])
		assert.Equal(t, "/pets/claim", m["route"])
	}
}

func TestLoggerFrom_FallsBackToGlobal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, &log.Logger, LoggerFrom(c))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RequestID(), AccessLog(AccessLogOptions{}), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(requestIDHeader, "rid-panic")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{
		"request_id": "rid-panic",
		"code":       "internal_error",
		"message":    "internal server error",
	}, body)
	assert.Contains(t, buf.String(), `"panic":"kaboom"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))
	assert.Equal(t, "partial", w.Body.String(), "nothing appended after a partial write")
}

func TestMaskQuery(t *testing.T) {
	names := []string{"token"}
	assert.Equal(t, "", maskQuery("", names))
	assert.Equal(t, "a=1&b=%2F", maskQuery("a=1&b=%2F", names))
	assert.Equal(t, "%74oken=[REDACTED]", maskQuery("%74oken=abc", names))
	assert.Equal(t, "token=[REDACTED]", maskQuery("token", names))
}

func TestLimit(t *testing.T) {
	assert.Equal(t, "abc", limit("abc", 3))
	assert.Equal(t, "ab...", limit("abcdef", 2))
}
