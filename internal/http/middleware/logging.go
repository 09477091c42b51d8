package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDHeader = "X-Request-ID"
	ctxKeyRequestID = "requestID"
	ctxKeyLogger    = "logger"

	maxLoggedQuery = 1024
	redacted       = "[REDACTED]"
)

// Header and query names whose values are never logged. QR tokens and
// transfer codes grant access to a pet until they expire.
var (
	secretHeaders = []string{"Authorization", "Cookie", "Set-Cookie"}
	secretParams  = []string{"token", "code"}
)

var (
	emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	// ISO 11784 microchips are 15 digits; matched before phones.
	microchipPattern = regexp.MustCompile(`\b\d{15}\b`)
	// International (+66 81 234 5678) or national trunk-prefixed (081-234-5678).
	phonePattern = regexp.MustCompile(`(?:\+\d{1,3}[ .-]?\d{1,4}|\b0\d{1,2})[ .-]?\d{3,4}[ .-]?\d{4}\b`)
)

// scrubPII masks owner emails, microchip numbers and phone numbers.
func scrubPII(s string) string {
	if s == "" {
		return s
	}
	s = emailPattern.ReplaceAllString(s, "[email]")
	s = microchipPattern.ReplaceAllString(s, "[microchip]")
	return phonePattern.ReplaceAllString(s, "[phone]")
}

// RequestID reuses the caller's X-Request-ID or mints a UUID, and echoes it
// on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, rid)
		c.Header(requestIDHeader, rid)
		c.Next()
	}
}

// AccessLogOptions configures AccessLog.
type AccessLogOptions struct {
	// ScrubPII masks emails, microchip and phone numbers in the query string
	// and header values. Off for local debugging.
	ScrubPII bool
	// MaskHeaders adds to the headers that are always masked.
	MaskHeaders []string
}

// AccessLog emits one zerolog event per request and attaches a
// request-scoped logger (request_id, route) to the Gin context and to the
// request context, where services pick it up with zerolog.Ctx.
//
// 5xx responses and requests with Gin errors log at error level, 4xx at warn,
// everything else at info. Bodies are never logged.
func AccessLog(opts AccessLogOptions) gin.HandlerFunc {
	masked := make(map[string]bool, len(secretHeaders)+len(opts.MaskHeaders))
	for _, h := range append(append([]string{}, secretHeaders...), opts.MaskHeaders...) {
		if h = strings.TrimSpace(h); h != "" {
			masked[http.CanonicalHeaderKey(h)] = true
		}
	}
	clean := func(s string) string {
		if opts.ScrubPII {
			return scrubPII(s)
		}
		return s
	}

	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", c.GetString(ctxKeyRequestID)).
			Str("route", route).
			Logger()
		c.Set(ctxKeyLogger, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		headers := zerolog.Dict()
		for k, vv := range c.Request.Header {
			if masked[k] {
				headers.Str(k, redacted)
				continue
			}
			headers.Str(k, clean(strings.Join(vv, ", ")))
		}
		query := clean(limit(maskQuery(c.Request.URL.RawQuery, secretParams), maxLoggedQuery))

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0 || status >= http.StatusInternalServerError:
			ev = l.Error()
			if len(c.Errors) > 0 {
				ev = ev.Str("errors", c.Errors.String())
			}
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev.Str("method", c.Request.Method).
			Str("user_id", userIDFromCtx(c)).
			Str("client_ip", c.ClientIP()).
			Str("query", query).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Dict("headers", headers).
			Msg("http_request")
	}
}

// Recovery turns a panic into a logged stack trace and a JSON 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := c.GetString(ctxKeyRequestID)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       CodeInternal,
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the logger AccessLog attached, or the global logger.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if lg, ok := c.Value(ctxKeyLogger).(*zerolog.Logger); ok {
		return lg
	}
	return &log.Logger
}

// maskQuery replaces the values of the named parameters in a raw query,
// leaving the rest of the encoding untouched.
func maskQuery(raw string, names []string) string {
	if raw == "" {
		return raw
	}
	parts := strings.Split(raw, "&")
	for i, part := range parts {
		key, _, _ := strings.Cut(part, "=")
		name, err := url.QueryUnescape(key)
		if err != nil {
			name = key
		}
		for _, n := range names {
			if strings.EqualFold(name, n) {
				parts[i] = key + "=" + redacted
				break
			}
		}
	}
	return strings.Join(parts, "&")
}

func limit(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
