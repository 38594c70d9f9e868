package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saralgov/licence-backend/internal/response"
)

// RequirePermission allows only admin tokens carrying the given permission code.
func RequirePermission(code string) gin.HandlerFunc {
	return requireAny(code)
}

// RequireAnyPermission allows admin tokens carrying at least one of the given codes.
func RequireAnyPermission(codes ...string) gin.HandlerFunc {
	return requireAny(codes...)
}

func requireAny(codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, p := range claims.Permissions {
			for _, code := range codes {
				if p == code {
					c.Next()
					return
				}
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}
