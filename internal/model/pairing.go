package model

import "time"

// PairingSession 网页伴侣编辑器会话。TokenHash 是令牌随机因子的 bcrypt 指纹，
// 撤销会话后即使令牌尚未过期也无法再通过校验。
// swagger:model PairingSession
type PairingSession struct {
	UUIDBase
	UserID      string     `gorm:"size:36;index;not null" json:"userId"`
	ProjectID   string     `gorm:"size:36;index;not null" json:"projectId"`
	TokenHash   string     `gorm:"size:100;not null" json:"-"`
	ExpiresAt   time.Time  `gorm:"index" json:"expiresAt"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`
	LastSavedAt *time.Time `json:"lastSavedAt,omitempty"`
}

func (PairingSession) TableName() string {
	return "pairing_sessions"
}

// Active 未撤销且未过期
func (s *PairingSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// EditorSaveLog 伴侣编辑器的保存流水，供教师端/家长端审计
type EditorSaveLog struct {
	BaseModel
	SessionID string `gorm:"size:36;index" json:"sessionId"`
	ProjectID string `gorm:"size:36;index" json:"projectId"`
	WordCount int    `gorm:"default:0" json:"wordCount"`
}

func (EditorSaveLog) TableName() string {
	return "editor_save_logs"
}
