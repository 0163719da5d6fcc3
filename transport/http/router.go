package http

import (
	"fmt"
	"net/http"

	"github.com/communa/backend/internal/logging"
	"github.com/communa/backend/service"
	"github.com/gin-gonic/gin"
)

// SetupRouter sets up the Gin router.
// X-Forwarded-For and X-Real-IP are honoured only when the peer matches one of
// trustedProxies (IPs or CIDRs); with none, the client IP is the socket address.
func SetupRouter(authService *service.AuthService, timeTracker *service.TimeTrackerService, trustedProxies []string, log logging.Logger) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(gin.Recovery(), RequestLogger(log))

	auth := NewAuthHandlers(authService, log)
	pairing := NewTimeTrackerHandlers(timeTracker, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := router.Group("/auth")
	{
		group.POST("/nonce", auth.Nonce)
		group.POST("/web3", auth.Web3)
		group.POST("/refresh", auth.Refresh)
		group.POST("/email", auth.Email)
		group.POST("/forgotPassword", auth.ForgotPassword)
		group.POST("/resetPassword", auth.ResetPassword)
		group.GET("/status", OptionalAuth(authService, log), auth.Status)
	}

	tt := group.Group("/timeTracker")
	{
		tt.POST("/nonce", pairing.Generate)
		tt.POST("/:nonce/login", pairing.Login)
		tt.POST("/:nonce/connect", RequireAuth(authService, log), pairing.Connect)
		tt.GET("/:nonce", pairing.Get)
	}

	return router, nil
}
