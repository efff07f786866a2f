package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/middleware/requestid"
)

// Audit records an access log line for sensitive therapist actions after
// successful requests.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
		}
		if cred := TherapistFromContext(c); cred != nil {
			fields = append(fields,
				zap.String("therapist", cred.Username),
				zap.Bool("first_responder", cred.FirstResponder),
			)
		}
		if reqID := requestid.Value(c); reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}
		logger.Info("therapist_audit", fields...)
	}
}
