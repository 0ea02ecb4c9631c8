package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// accessLogMiddleware logs one structured line per request via zerolog,
// the access-logging library the teacher's go.mod carried but never wired
// up (SPEC_FULL.md domain-stack table); this is where it earns its keep.
func accessLogMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		path := c.Request.URL.Path
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(started)).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}
