package model

import "time"

// UserProfile 后端 user_profiles 表的一行，客户端仅做读多写少的缓存
// swagger:model UserProfile
type UserProfile struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Level       int    `json:"level"`
	XP          int    `json:"xp"`
}

// AuthUser GoTrue 认证用户
type AuthUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session 仅在已认证期间存在，登出即销毁
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	User         AuthUser `json:"user"`
}
