// Package settings 提供用户偏好设置服务
// 设置行按需懒创建：首次读取时不存在则用默认值落库
package settings

import (
	"gorm.io/gorm"

	"notedeck/internal/database"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/logger"
)

// UpdateSettingsRequest 更新设置请求，仅更新非空字段
type UpdateSettingsRequest struct {
	DefaultView *string `json:"default_view" binding:"omitempty,max=20"` // 默认视图
	Language    *string `json:"language" binding:"omitempty,max=10"`     // 界面语言
	Timezone    *string `json:"timezone" binding:"omitempty,max=50"`     // 时区
}

// Service 设置服务接口
type Service interface {
	// GetSettings 获取用户设置，不存在时懒创建
	GetSettings(userID uint) (*database.Settings, error)
	// UpdateSettings 更新用户设置
	UpdateSettings(userID uint, req *UpdateSettingsRequest) (*database.Settings, error)
}

type settingsService struct {
	db *gorm.DB
}

// NewService 创建设置服务实例
func NewService(db *gorm.DB) Service {
	return &settingsService{db: db}
}

// GetSettings 获取用户设置
// 首次访问时自动创建默认设置行
func (s *settingsService) GetSettings(userID uint) (*database.Settings, error) {
	settings := &database.Settings{UserID: userID}
	err := s.db.Where("user_id = ?", userID).FirstOrCreate(settings).Error
	if err != nil {
		logger.Errorf("Failed to load settings for user %d: %v", userID, err)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settings, nil
}

// UpdateSettings 更新用户设置的非空字段
func (s *settingsService) UpdateSettings(userID uint, req *UpdateSettingsRequest) (*database.Settings, error) {
	settings, err := s.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.DefaultView != nil {
		updates["default_view"] = *req.DefaultView
	}
	if req.Language != nil {
		updates["language"] = *req.Language
	}
	if req.Timezone != nil {
		updates["timezone"] = *req.Timezone
	}

	if len(updates) > 0 {
		if err := s.db.Model(settings).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetSettings(userID)
}
