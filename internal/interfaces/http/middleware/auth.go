// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/pkg/auth"
)

// TenantMiddleware authenticates dashboard requests and binds the seller
// tenant to the request context. Every downstream query is scoped by it.
// Browser sessions present a JWT; machine integrations may present a
// configured API key via X-API-Key instead.
func TenantMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)
	apiKeyManager := auth.NewAPIKeyManager(cfg)

	return func(c *gin.Context) {
		if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
			credential, err := apiKeyManager.Authenticate(apiKey)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid API key",
				})
				c.Abort()
				return
			}

			c.Set("seller_id", credential.SellerID)
			c.Set("user_id", credential.UserID)

			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("seller_id", claims.SellerID)
		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// SellerID reads the authenticated tenant from the request context
func SellerID(c *gin.Context) uint {
	if id, exists := c.Get("seller_id"); exists {
		if sellerID, ok := id.(uint); ok {
			return sellerID
		}
	}
	return 0
}

// UserID reads the authenticated user from the request context
func UserID(c *gin.Context) uint {
	if id, exists := c.Get("user_id"); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}
