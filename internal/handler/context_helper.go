package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unitrack-api/internal/middleware"
	"github.com/noah-isme/unitrack-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// userIDFromContext returns "" when the request is anonymous; services
// turn that into their fixed authorization messages.
func userIDFromContext(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func tokenFromContext(c *gin.Context) string {
	if token := c.GetString(middleware.ContextTokenKey); token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
