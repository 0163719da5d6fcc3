package http

import (
	"strings"
	"time"

	"github.com/communa/backend/core"
	"github.com/communa/backend/internal/logging"
	"github.com/communa/backend/service"
	"github.com/gin-gonic/gin"
)

const userKey = "user"

// CurrentUser returns the user resolved by the auth middleware, if any
func CurrentUser(c *gin.Context) *core.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*core.User)
	return user
}

func bearerToken(c *gin.Context) string {
	auth := strings.TrimSpace(c.GetHeader(HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return auth
}

// OptionalAuth resolves the bearer token when present and lets anonymous requests through
func OptionalAuth(authService *service.AuthService, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authService.UserFromToken(c.Request.Context(), bearerToken(c))
		if err != nil {
			abortWithError(c, log, err)
			return
		}
		if user != nil {
			c.Set(userKey, user)
		}
		c.Next()
	}
}

// RequireAuth rejects requests whose bearer token does not resolve to a user
func RequireAuth(authService *service.AuthService, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authService.RequireUserFromToken(c.Request.Context(), bearerToken(c))
		if err != nil {
			abortWithError(c, log, err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// RequestLogger logs one line per request once the handler chain is done
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		if c.Writer.Status() >= 500 {
			log.Warn(c.Request.Context(), "http request", args...)
			return
		}
		log.Info(c.Request.Context(), "http request", args...)
	}
}
