package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CronAuth guards scheduled maintenance endpoints with the shared cron
// secret sent as "Authorization: Bearer <secret>". An unset secret rejects
// every request.
func CronAuth(secret string, logger zerolog.Logger) gin.HandlerFunc {
	expected := []byte("Bearer " + secret)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader("Authorization"))
		if secret == "" || subtle.ConstantTimeCompare(got, expected) != 1 {
			logger.Warn().
				Time("at", time.Now().UTC()).
				Str("client_ip", c.ClientIP()).
				Msg("Unauthorized access attempt")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
