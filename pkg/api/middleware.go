package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ridetracker/pkg/logger"
)

const ctxUserID = "user_id"

// auth requires "Authorization: Bearer <token>" and stores the subject.
func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, err := s.signer.ParseAPIToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.FullPath()),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.log.Error("request failed", fields...)
			return
		}
		s.log.Debug("request", fields...)
	}
}

func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
