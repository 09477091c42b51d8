// Idempotency-Key handling for writes. Pet creation, vaccination records and
// transfer-code claims are the operations a flaky mobile connection tends to
// retry; clients send a key and the handler replays the stored result instead
// of acting twice. This middleware only validates the key and looks it up.
// Handlers persist and serve the result (see handlers.replay/remember).

package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client's key for a write.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// DefaultIdempotencyKeyLen bounds accepted keys when no limit is given.
const DefaultIdempotencyKeyLen = 200

var idemKeyChars = regexp.MustCompile(`^[A-Za-z0-9._~:-]+$`)

// ReplayLookup reports whether userID already completed a request with key
// under scope and the stored result is still valid.
type ReplayLookup func(ctx context.Context, userID, scope, key string) (bool, error)

// GetIdempotencyKey returns the key accepted by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay is true when a stored result exists for the request's key.
func IsReplay(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemReplay)
}

// IdempotencyScope names the operation a key belongs to: method and
// concrete path, e.g. "POST /api/v1/pets/claim". The same key can therefore be
// reused on different pets without colliding.
func IdempotencyScope(c *gin.Context) string {
	return c.Request.Method + " " + c.Request.URL.Path
}

func unsafeMethod(m string) bool {
	switch m {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// IdempotencyValidator accepts an Idempotency-Key on write requests.
//
// A malformed key (too long, or outside [A-Za-z0-9._~:-]) is rejected with
// 400 invalid_idempotency_key. A valid key is stored on the context. For an
// authenticated caller the key is looked up; a hit marks the request as a
// replay and exempts it from rate limiting. Lookup failures are logged and
// the request proceeds as a first attempt. Reads ignore the header.
func IdempotencyValidator(maxLen int, lookup ReplayLookup) gin.HandlerFunc {
	if maxLen <= 0 {
		maxLen = DefaultIdempotencyKeyLen
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if key == "" || !unsafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxLen || !idemKeyChars.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       CodeInvalidIdempotencyKey,
				"message":    "Idempotency-Key must be 1-" + strconv.Itoa(maxLen) + " characters of [A-Za-z0-9._~:-]",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		uid := userIDFromCtx(c)
		if lookup == nil || uid == "" {
			c.Next()
			return
		}
		hit, err := lookup(c.Request.Context(), uid, IdempotencyScope(c), key)
		switch {
		case err != nil:
			LoggerFrom(c).Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed")
		case hit:
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
}

// userIDFromCtx is the caller set by Authenticate, empty when anonymous.
func userIDFromCtx(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}
