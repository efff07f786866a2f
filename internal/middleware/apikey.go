package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	appErrors "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/errors"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/response"
)

// APIKeyHeader carries the shared key for student-facing endpoints.
const APIKeyHeader = "X-API-Key"

// APIKey requires the X-API-Key header to match key. An empty key disables
// the check.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		supplied := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) != 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "Invalid or missing API key."))
			c.Abort()
			return
		}
		c.Next()
	}
}
