package http

import (
	"errors"
	"net/http"

	"github.com/communa/backend/core"
	"github.com/communa/backend/internal/logging"
	"github.com/gin-gonic/gin"
)

// abortWithError maps service errors to a status and a client safe message
func abortWithError(c *gin.Context, log logging.Logger, err error) {
	var clientErr *core.Error
	switch {
	case errors.As(err, &clientErr):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": clientErr.Error()})
	default:
		log.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func abortInvalidRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}
