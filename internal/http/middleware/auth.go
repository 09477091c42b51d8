// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's identity from a bearer access token. The
// plain user id goes under "userID" for the rate limiter, idempotency
// validator and access logs. The auth.Principal travels on the request
// context, so code below the HTTP layer can read it without Gin.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/apisada-prim/pawbook/internal/auth"
)

// Codes written by middleware that answers the request itself. They share
// the handlers' error envelope.
const (
	CodeUnauthorized          = "unauthorized"
	CodeInvalidIdempotencyKey = "invalid_idempotency_key"
	CodeTooManyRequests       = "too_many_requests"
	CodeInternal              = "internal_error"
)

const ctxKeyUserID = "userID"

// TokenParser turns a bearer token into a principal. *auth.AccessTokens
// satisfies it.
type TokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// Authenticate attaches the principal named by a valid "Authorization: Bearer"
// header. Missing or invalid tokens leave the request anonymous; routes that
// need a caller add RequireAuth.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			c.Next()
			return
		}
		p, err := tokens.Parse(token)
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("bearer token rejected")
			c.Next()
			return
		}
		c.Set(ctxKeyUserID, p.UserID)
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFrom(c); ok {
			c.Next()
			return
		}
		c.Header("WWW-Authenticate", `Bearer realm="pawbook"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       CodeUnauthorized,
			"message":    "authentication required",
		})
	}
}

// PrincipalFrom returns the caller attached by Authenticate.
func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	return auth.FromContext(c.Request.Context())
}
