package http

import (
	"net/http"

	"github.com/communa/backend/core"
	"github.com/communa/backend/internal/logging"
	"github.com/communa/backend/service"
	"github.com/gin-gonic/gin"
)

// Response headers carrying the issued pair
const (
	HeaderAuthorization = "Authorization"
	HeaderRefreshToken  = "Refresh-Token"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	log         logging.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, log logging.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		log:         log,
	}
}

func writeTokens(c *gin.Context, pair *core.TokenPair) {
	c.Header(HeaderAuthorization, "Bearer "+pair.AccessToken)
	c.Header(HeaderRefreshToken, pair.RefreshToken)
	c.JSON(http.StatusOK, pair)
}

// Nonce issues a login challenge
func (h *AuthHandlers) Nonce(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c)
		return
	}

	nonce, err := h.authService.GetNonce(c.Request.Context(), req.Address)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// Web3 logs in with a signed nonce
func (h *AuthHandlers) Web3(c *gin.Context) {
	var req struct {
		Signature string `json:"signature" binding:"required"`
		Address   string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c)
		return
	}

	pair, err := h.authService.LoginWeb3(c.Request.Context(), req.Signature, req.Address)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	writeTokens(c, pair)
}

// Refresh handles token refresh
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	writeTokens(c, pair)
}

// Status returns the caller's account, or null when anonymous
func (h *AuthHandlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentUser(c))
}

// Email logs in with an email or phone and password
func (h *AuthHandlers) Email(c *gin.Context) {
	var req struct {
		EmailOrPhone string `json:"emailOrPhone" binding:"required"`
		Password     string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c)
		return
	}

	pair, err := h.authService.LoginPassword(c.Request.Context(), req.EmailOrPhone, req.Password)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	writeTokens(c, pair)
}

// ForgotPassword sends a reset token to the account's email or phone
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req struct {
		EmailOrPhone string `json:"emailOrPhone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.EmailOrPhone); err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// ResetPassword consumes a reset token
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// TimeTrackerHandlers contains HTTP handlers for device pairing
type TimeTrackerHandlers struct {
	timeTracker *service.TimeTrackerService
	log         logging.Logger
}

// NewTimeTrackerHandlers creates new pairing handlers
func NewTimeTrackerHandlers(timeTracker *service.TimeTrackerService, log logging.Logger) *TimeTrackerHandlers {
	return &TimeTrackerHandlers{
		timeTracker: timeTracker,
		log:         log,
	}
}

// Generate opens a pairing session for the calling device
func (h *TimeTrackerHandlers) Generate(c *gin.Context) {
	session, err := h.timeTracker.Generate(c.Request.Context(), c.ClientIP())
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nonce":   session.Nonce,
		"startAt": session.StartAt,
	})
}

// Login marks the session as waiting for the browser
func (h *TimeTrackerHandlers) Login(c *gin.Context) {
	if err := h.timeTracker.Login(c.Request.Context(), c.Param("nonce"), c.ClientIP()); err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// Connect attaches the logged in user to the session. Requires RequireAuth.
func (h *TimeTrackerHandlers) Connect(c *gin.Context) {
	err := h.timeTracker.Connect(c.Request.Context(), c.Param("nonce"), CurrentUser(c), c.ClientIP())
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// Get is polled by the device until the session is connected
func (h *TimeTrackerHandlers) Get(c *gin.Context) {
	session, err := h.timeTracker.Get(c.Request.Context(), c.Param("nonce"), c.ClientIP())
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
