package middleware

import (
	"context"
	"errors"
	"writequest_app/internal/util"

	"github.com/gin-gonic/gin"
)

// EditorAuthenticator 编辑器令牌校验，由配对服务实现
type EditorAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*util.EditorClaims, error)
}

// EditorAuthMiddleware 校验网页编辑器的会话令牌。
// 已撤销的会话返回410，让编辑器提示重新配对而不是重试。
func EditorAuthMiddleware(auth EditorAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, util.ErrSessionRevoked) {
				util.Gone(c, "编辑器会话已失效，请重新配对")
			} else {
				util.Unauthorized(c)
			}
			c.Abort()
			return
		}

		c.Set("editor", claims)
		c.Next()
	}
}

// GetEditorClaims 从上下文取已认证的编辑器会话
func GetEditorClaims(c *gin.Context) *util.EditorClaims {
	v, ok := c.Get("editor")
	if !ok {
		return nil
	}
	claims, ok := v.(*util.EditorClaims)
	if !ok {
		return nil
	}
	return claims
}
