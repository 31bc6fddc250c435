package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondWithError aborts the request with a single human-readable message.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}
