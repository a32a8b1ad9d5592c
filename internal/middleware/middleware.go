package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"taskboard/pkg/logger"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	cors "github.com/itsjamie/gin-cors"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user"

// SessionResolver maps a bearer token to a user id.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (string, bool)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// AuthMiddleware rejects requests without a live session and stores the
// resolved user id under UserIDKey.
func AuthMiddleware(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := BearerToken(c)
		if token == "" {
			logger.Debug(ctx, "Missing or invalid Authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, ok := sessions.ResolveSession(ctx, token)
		if !ok {
			logger.Debug(ctx, "Unknown session token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(logger.WithContext(ctx, logger.FromContext(ctx).With("user_id", userID)))
		c.Next()
	}
}

// UserID returns the id set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// RequestLogger tags the request context logger with the request id and logs
// one line per request. It must run after requestid.New().
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := logger.WithRequestID(c.Request.Context(), requestid.Get(c))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		logger.Info(ctx, "Request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// CORS allows the browser frontend at origins to call the API.
func CORS(origins string) gin.HandlerFunc {
	return cors.Middleware(cors.Config{
		Origins:         origins,
		Methods:         "GET, POST, PATCH, DELETE",
		RequestHeaders:  "Origin, Authorization, Content-Type",
		ExposedHeaders:  "X-Request-ID",
		MaxAge:          12 * time.Hour,
		Credentials:     false,
		ValidateHeaders: false,
	})
}
