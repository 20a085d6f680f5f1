// Package tag 提供标签管理和笔记标签关联服务
// 标签名称在用户范围内唯一；笔记与标签的关联通过note_tags连接表维护
package tag

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"notedeck/internal/database"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/logger"
	"notedeck/internal/service/ownership"
)

// CreateTagRequest 创建标签请求
type CreateTagRequest struct {
	Name    string `json:"name" binding:"required,max=50"` // 标签名称，必填，用户内唯一
	ColorID *uint  `json:"color_id"`                       // 颜色标识，可选
}

// UpdateTagRequest 更新标签请求，仅更新非空字段
type UpdateTagRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=50"` // 新名称
	ColorID *uint   `json:"color_id"`                        // 新颜色标识
}

// Service 标签服务接口
type Service interface {
	// CreateTag 创建标签，名称在用户内重复时返回校验错误
	CreateTag(userID uint, req *CreateTagRequest) (*database.Tag, error)
	// GetTag 获取标签详情
	GetTag(userID, tagID uint) (*database.Tag, error)
	// ListTags 获取用户的全部标签
	ListTags(userID uint) ([]database.Tag, error)
	// UpdateTag 更新标签
	UpdateTag(userID, tagID uint, req *UpdateTagRequest) (*database.Tag, error)
	// DeleteTag 删除标签及其全部笔记关联
	DeleteTag(userID, tagID uint) error
	// AttachTag 为笔记打标签
	AttachTag(userID, noteID, tagID uint) error
	// DetachTag 移除笔记上的标签
	DetachTag(userID, noteID, tagID uint) error
	// ListNoteTags 获取笔记上的全部标签
	ListNoteTags(userID, noteID uint) ([]database.Tag, error)
}

type tagService struct {
	db      *gorm.DB
	checker *ownership.Checker
}

// NewService 创建标签服务实例
func NewService(db *gorm.DB) Service {
	return &tagService{
		db:      db,
		checker: ownership.NewChecker(db),
	}
}

// CreateTag 创建标签
// 先查重再写入；名称唯一性由(user_id, name)唯一索引兜底
func (s *tagService) CreateTag(userID uint, req *CreateTagRequest) (*database.Tag, error) {
	var count int64
	if err := s.db.Model(&database.Tag{}).
		Where("user_id = ? AND name = ?", userID, req.Name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.New(apperrors.ErrTagAlreadyExists)
	}

	tag := &database.Tag{
		UserID:  userID,
		Name:    req.Name,
		ColorID: req.ColorID,
	}
	if err := s.db.Create(tag).Error; err != nil {
		logger.Errorf("Failed to create tag for user %d: %v", userID, err)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Infof("Tag created: id=%d user=%d name=%s", tag.ID, userID, tag.Name)
	return tag, nil
}

// GetTag 获取标签详情
func (s *tagService) GetTag(userID, tagID uint) (*database.Tag, error) {
	return s.checker.Tag(userID, tagID)
}

// ListTags 获取用户的全部标签，按名称排序
func (s *tagService) ListTags(userID uint) ([]database.Tag, error) {
	var tags []database.Tag
	err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}

// UpdateTag 更新标签的非空字段，改名时做用户内查重
func (s *tagService) UpdateTag(userID, tagID uint, req *UpdateTagRequest) (*database.Tag, error) {
	tag, err := s.checker.Tag(userID, tagID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.NewWithDetails(apperrors.ErrInvalidParams, "tag name cannot be empty")
		}
		if *req.Name != tag.Name {
			var count int64
			if err := s.db.Model(&database.Tag{}).
				Where("user_id = ? AND name = ? AND id <> ?", userID, *req.Name, tag.ID).
				Count(&count).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if count > 0 {
				return nil, apperrors.New(apperrors.ErrTagAlreadyExists)
			}
		}
		updates["name"] = *req.Name
	}
	if req.ColorID != nil {
		updates["color_id"] = *req.ColorID
	}

	if len(updates) > 0 {
		if err := s.db.Model(tag).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.checker.Tag(userID, tagID)
}

// DeleteTag 删除标签
// 标签的全部笔记关联在同一事务内删除，笔记本身不受影响
func (s *tagService) DeleteTag(userID, tagID uint) error {
	tag, err := s.checker.Tag(userID, tagID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&database.NoteTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete tag links: %w", err)
		}
		if err := tx.Delete(tag).Error; err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Errorf("Failed to delete tag %d: %v", tagID, err)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Infof("Tag deleted: id=%d user=%d", tagID, userID)
	return nil
}

// AttachTag 为笔记打标签
// 笔记和标签都必须属于当前用户；重复关联返回校验错误
func (s *tagService) AttachTag(userID, noteID, tagID uint) error {
	note, err := s.checker.Note(userID, noteID)
	if err != nil {
		return err
	}
	tag, err := s.checker.Tag(userID, tagID)
	if err != nil {
		return err
	}

	var existing database.NoteTag
	err = s.db.Where("note_id = ? AND tag_id = ?", note.ID, tag.ID).First(&existing).Error
	if err == nil {
		return apperrors.New(apperrors.ErrTagAlreadyApplied)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	link := &database.NoteTag{NoteID: note.ID, TagID: tag.ID}
	if err := s.db.Create(link).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DetachTag 移除笔记上的标签，未关联时返回校验错误
func (s *tagService) DetachTag(userID, noteID, tagID uint) error {
	note, err := s.checker.Note(userID, noteID)
	if err != nil {
		return err
	}
	tag, err := s.checker.Tag(userID, tagID)
	if err != nil {
		return err
	}

	result := s.db.Where("note_id = ? AND tag_id = ?", note.ID, tag.ID).Delete(&database.NoteTag{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.ErrTagNotAssociated)
	}
	return nil
}

// ListNoteTags 获取笔记上的全部标签
func (s *tagService) ListNoteTags(userID, noteID uint) ([]database.Tag, error) {
	note, err := s.checker.Note(userID, noteID)
	if err != nil {
		return nil, err
	}

	var tags []database.Tag
	err = s.db.Joins("JOIN note_tags ON note_tags.tag_id = tags.id").
		Where("note_tags.note_id = ?", note.ID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}
