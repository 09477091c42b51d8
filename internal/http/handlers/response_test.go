package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFail_EnvelopeAndServerErrorLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-1")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/gone", func(c *gin.Context) { Fail(c, http.StatusGone, ErrCodeQrExpired, "qr session expired") })
	r.GET("/boom", func(c *gin.Context) { fail(c, http.StatusInternalServerError, ErrCodeInternal, "store offline") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gone", nil))
	require.Equal(t, http.StatusGone, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{RequestID: "rid-1", Code: "qr_expired", Message: "qr session expired"}, body)
	assert.Empty(t, buf.String(), "4xx is not logged here")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"message":"store offline"`)
}

func TestSuccessHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/pets", func(c *gin.Context) { ok(c, http.StatusCreated, gin.H{"id": "p1"}) })
	r.DELETE("/pets/:id", func(c *gin.Context) { noContent(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/pets", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"p1"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/pets/p1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestNotModified(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const etag = `W/"pets:u1:2:99"`

	cases := []struct {
		inm  string
		want int
	}{
		{"", http.StatusOK},
		{etag, http.StatusNotModified},
		{`"pets:u1:2:99"`, http.StatusNotModified},
		{`W/"other", ` + etag, http.StatusNotModified},
		{"*", http.StatusNotModified},
		{`W/"pets:u1:3:99"`, http.StatusOK},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/pets", func(c *gin.Context) {
			if notModified(c, etag) {
				return
			}
			c.String(http.StatusOK, "[]")
		})
		req := httptest.NewRequest(http.MethodGet, "/pets", nil)
		if tc.inm != "" {
			req.Header.Set("If-None-Match", tc.inm)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, tc.inm)
		assert.Equal(t, etag, w.Header().Get("ETag"))
	}
}
