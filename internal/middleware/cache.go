package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl marks responses as long-lived public assets. Uploaded
// files are stored under random UUID names and never rewritten, so
// immutable is safe here.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	header := fmt.Sprintf("public, max-age=%d, immutable", maxAgeSeconds)
	return func(c *gin.Context) {
		c.Header("Cache-Control", header)
		c.Next()
	}
}
