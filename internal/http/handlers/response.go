package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/apisada-prim/pawbook/internal/http/middleware"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"qr_already_used"`
	Message   string `json:"message" example:"qr session already used"`
}

// fail aborts with an ErrorResponse. 5xx responses are also logged.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Msg(msg)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail lets the router answer NoRoute/NoMethod with the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }

// notModified sets etag on the response and answers 304 when the request's
// If-None-Match lists it (weak comparison, "*" matches anything). It reports
// whether the 304 was written.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	inm := c.GetHeader("If-None-Match")
	if inm == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(inm, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == want {
			c.Status(http.StatusNotModified)
			return true
		}
	}
	return false
}
