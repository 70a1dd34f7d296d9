package middleware

import (
	"crypto/rand"
	"regexp"

	"github.com/achla24/LeaveEase/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const requestIDHeader = "X-Request-ID"

// Caller-supplied ids must be short and token-like.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// RequestID echoes a well-formed X-Request-ID or mints a ULID, and stores it
// on both the gin and request contexts.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !requestIDPattern.MatchString(rid) {
			rid = ulid.MustNew(ulid.Now(), rand.Reader).String()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(contextutil.WithRequestID(c.Request.Context(), rid))

		c.Header(requestIDHeader, rid)
		c.Next()
	}
}
