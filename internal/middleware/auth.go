package middleware

import (
	"strings"
	"writequest_app/internal/config"
	"writequest_app/internal/util"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

// AppAuthMiddleware 校验移动端带来的托管认证令牌，本地验签不回源
func AppAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseAppToken(tokenString, cfg.Supabase.JWTSecret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// GetAppUser 从上下文取已认证的移动端用户
func GetAppUser(c *gin.Context) *util.AppClaims {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	claims, ok := v.(*util.AppClaims)
	if !ok {
		return nil
	}
	return claims
}
