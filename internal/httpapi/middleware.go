package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/internal/store"
)

var defaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:8080",
}

func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	config := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	return cors.New(config)
}

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		log.Info(c.Request.Context(), "%s %s %d %s", c.Request.Method, c.FullPath(), c.Writer.Status(), duration)
	}
}

func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// Auth maps the bearer token to a user id and stores it in the request
// context. With no tokens configured every request runs as fallbackUser.
func Auth(tokens map[string]string, fallbackUser string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := ""
		if len(tokens) == 0 {
			userID = fallbackUser
		} else {
			token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
			if ok {
				userID = tokens[strings.TrimSpace(token)]
			}
		}

		if userID == "" {
			respondMessage(c, http.StatusUnauthorized, "you must be signed in")
			c.Abort()
			return
		}

		ctx := store.WithUser(c.Request.Context(), userID)
		ctx = logger.WithField(ctx, "user_id", userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
