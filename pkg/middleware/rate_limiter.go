package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit applies a per-client-IP rate, e.g. "10-M" for ten per minute.
// Auth endpoints get a tight rate; the SOS endpoints stay unlimited so an
// emergency is never throttled.
func RateLimit(rate string) gin.HandlerFunc {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		panic(err)
	}
	lim := limiter.New(memory.NewStore(), r)
	return func(c *gin.Context) {
		lc, err := lim.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		if lc.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
