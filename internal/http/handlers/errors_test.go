package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apisada-prim/pawbook/internal/services"
)

func TestFailService_MapsSentinels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrAlreadyUsed, http.StatusConflict, ErrCodeQrAlreadyUsed},
		{services.ErrExpired, http.StatusGone, ErrCodeQrExpired},
		{services.ErrInvalidSignature, http.StatusBadRequest, ErrCodeInvalidSignature},
		{services.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
		{services.ErrPetMismatch, http.StatusUnprocessableEntity, ErrCodePetMismatch},
		{services.ErrAlreadyOwner, http.StatusConflict, ErrCodeAlreadyOwner},
		{services.ErrInvalidOrExpired, http.StatusNotFound, ErrCodeInvalidOrExpiredCode},
		{services.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest},
		{services.ErrEmailTaken, http.StatusConflict, ErrCodeConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
		// wrapped sentinels still match
		{fmt.Errorf("claim: %w", services.ErrInvalidOrExpired), http.StatusNotFound, ErrCodeInvalidOrExpiredCode},
		// anything else is a 500 with a generic message
		{errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			r := gin.New()
			r.GET("/x", func(c *gin.Context) { failService(c, tc.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			require.Equal(t, tc.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			if tc.status == http.StatusInternalServerError {
				assert.NotContains(t, body.Message, "disk on fire")
			}
		})
	}
}

func TestPrincipal_MissingCallerIs401(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", func(c *gin.Context) {
		if _, has := principal(c); !has {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestParseOptionalTime(t *testing.T) {
	str := func(s string) *string { return &s }

	got, err := parseOptionalTime(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseOptionalTime(str("  "))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseOptionalTime(str("2026-01-10"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)))

	got, err = parseOptionalTime(str("2026-01-10T09:30:00+07:00"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2026, 1, 10, 2, 30, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, got.Location())

	_, err = parseOptionalTime(str("10/01/2026"))
	assert.Error(t, err)
}

func TestNonNil(t *testing.T) {
	var none []int
	raw, err := json.Marshal(nonNil(none))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
	assert.Equal(t, []int{1}, nonNil([]int{1}))
}
