package util

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EditorClaims 网页伴侣编辑器会话令牌。Nonce 与数据库中的 bcrypt 指纹比对，
// 指纹被清除或会话被撤销后令牌即失效。
type EditorClaims struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
	Nonce     string `json:"nonce"`
	jwt.RegisteredClaims
}

func GenerateEditorToken(sessionID, userID, projectID, nonce, secret string, expiresAt time.Time) (string, error) {
	claims := &EditorClaims{
		SessionID: sessionID,
		UserID:    userID,
		ProjectID: projectID,
		Nonce:     nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// AppClaims 托管认证服务签发的用户令牌，用共享密钥本地校验
type AppClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID GoTrue 把用户ID放在 sub
func (c *AppClaims) UserID() string {
	return c.Subject
}

func ParseAppToken(tokenString, secret string) (*AppClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAuthFailed
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AppClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrAuthFailed
}

func ParseEditorToken(tokenString, secret string) (*EditorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &EditorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSessionRevoked
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*EditorClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrSessionRevoked
}
