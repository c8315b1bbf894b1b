package repository

import (
	"errors"
	"time"
	"writequest_app/internal/model"
	"writequest_app/internal/util"

	"gorm.io/gorm"
)

type PairingRepository struct {
	DB *gorm.DB
}

func NewPairingRepository(db *gorm.DB) *PairingRepository {
	return &PairingRepository{DB: db}
}

func (r *PairingRepository) Create(session *model.PairingSession) error {
	return r.DB.Create(session).Error
}

func (r *PairingRepository) FindByID(id string) (*model.PairingSession, error) {
	var session model.PairingSession
	err := r.DB.Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Revoke 幂等，已撤销的会话再撤销不报错
func (r *PairingRepository) Revoke(id string, now time.Time) error {
	result := r.DB.Model(&model.PairingSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", now)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// TouchSave 更新最近保存时间
func (r *PairingRepository) TouchSave(id string, now time.Time) error {
	return r.DB.Model(&model.PairingSession{}).
		Where("id = ?", id).
		Update("last_saved_at", now).Error
}

// DeleteExpired 清理过期会话，返回删除行数
func (r *PairingRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.DB.Where("expires_at < ?", now).Delete(&model.PairingSession{})
	return result.RowsAffected, result.Error
}

func (r *PairingRepository) LogSave(log *model.EditorSaveLog) error {
	return r.DB.Create(log).Error
}

// CountActiveByUser 用户当前有效的编辑器会话数
func (r *PairingRepository) CountActiveByUser(userID string, now time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.PairingSession{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now).
		Count(&count).Error
	return count, err
}
