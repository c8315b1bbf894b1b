package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"writequest_app/internal/model"
	"writequest_app/internal/util"
)

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrant struct {
	RefreshToken string `json:"refresh_token"`
}

// Authenticate 密码登录，凭据错误统一映射为 ErrAuthFailed
func (c *Client) Authenticate(ctx context.Context, email, password string) (*model.Session, error) {
	var session model.Session
	err := c.doJSON(ctx, http.MethodPost,
		c.authPrefix+"/token?grant_type=password",
		nil, passwordGrant{Email: email, Password: password}, &session)
	if err != nil {
		return nil, mapAuthError(err)
	}
	return &session, nil
}

// RefreshSession 用保存的 refresh token 恢复会话（冷启动的会话检查）
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error) {
	var session model.Session
	err := c.doJSON(ctx, http.MethodPost,
		c.authPrefix+"/token?grant_type=refresh_token",
		nil, refreshGrant{RefreshToken: refreshToken}, &session)
	if err != nil {
		return nil, mapAuthError(err)
	}
	return &session, nil
}

// GetAuthUser 校验当前访问令牌并返回认证用户
func (c *Client) GetAuthUser(ctx context.Context) (*model.AuthUser, error) {
	var user model.AuthUser
	if err := c.doJSON(ctx, http.MethodGet, c.authPrefix+"/user", nil, nil, &user); err != nil {
		return nil, mapAuthError(err)
	}
	return &user, nil
}

// GoTrue 对错误的凭据返回 400，统一归入认证失败
func mapAuthError(err error) error {
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusBadRequest {
		return fmt.Errorf("%w: %s", util.ErrAuthFailed, se.detail)
	}
	return err
}
