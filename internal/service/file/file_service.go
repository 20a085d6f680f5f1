// Package file 提供文件元数据管理服务
// 只管理元数据记录，文件字节本身由外部对象存储负责，storage_path是指向它的路径
package file

import (
	"gorm.io/gorm"

	"notedeck/internal/database"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/logger"
	"notedeck/internal/service/ownership"
)

// CreateFileRequest 登记文件元数据请求
type CreateFileRequest struct {
	StoragePath string `json:"storage_path" binding:"required,max=500"` // 对象存储路径，必填
	Filename    string `json:"filename" binding:"required,max=255"`     // 原始文件名，必填
	MimeType    string `json:"mime_type" binding:"max=100"`             // MIME类型，可选
	Size        int64  `json:"size" binding:"min=0"`                    // 文件大小（字节）
	Description string `json:"description" binding:"max=500"`           // 描述，可选
	NoteID      *uint  `json:"note_id"`                                 // 挂接的笔记ID，可选
}

// UpdateFileRequest 更新文件元数据请求，仅更新非空字段
// NoteID指向0时解除挂接
type UpdateFileRequest struct {
	Filename    *string `json:"filename" binding:"omitempty,max=255"`    // 新文件名
	Description *string `json:"description" binding:"omitempty,max=500"` // 新描述
	NoteID      *uint   `json:"note_id"`                                 // 新挂接笔记ID，0表示解除挂接
}

// Service 文件元数据服务接口
type Service interface {
	// CreateFile 登记文件元数据
	CreateFile(userID uint, req *CreateFileRequest) (*database.File, error)
	// GetFile 获取文件元数据
	GetFile(userID, fileID uint) (*database.File, error)
	// ListFiles 获取文件列表，可按笔记过滤
	ListFiles(userID uint, noteID *uint) ([]database.File, error)
	// UpdateFile 更新文件元数据，支持挂接和解除挂接笔记
	UpdateFile(userID, fileID uint, req *UpdateFileRequest) (*database.File, error)
	// DeleteFile 删除文件元数据记录
	DeleteFile(userID, fileID uint) error
}

type fileService struct {
	db      *gorm.DB
	checker *ownership.Checker
}

// NewService 创建文件元数据服务实例
func NewService(db *gorm.DB) Service {
	return &fileService{
		db:      db,
		checker: ownership.NewChecker(db),
	}
}

// CreateFile 登记文件元数据，挂接笔记时先校验笔记归属
func (s *fileService) CreateFile(userID uint, req *CreateFileRequest) (*database.File, error) {
	if req.NoteID != nil {
		if _, err := s.checker.Note(userID, *req.NoteID); err != nil {
			return nil, err
		}
	}

	file := &database.File{
		UserID:      userID,
		NoteID:      req.NoteID,
		StoragePath: req.StoragePath,
		Filename:    req.Filename,
		MimeType:    req.MimeType,
		Size:        req.Size,
		Description: req.Description,
	}
	if err := s.db.Create(file).Error; err != nil {
		logger.Errorf("Failed to create file record for user %d: %v", userID, err)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Infof("File registered: id=%d user=%d name=%s", file.ID, userID, file.Filename)
	return file, nil
}

// GetFile 获取文件元数据
func (s *fileService) GetFile(userID, fileID uint) (*database.File, error) {
	return s.checker.File(userID, fileID)
}

// ListFiles 获取文件列表
func (s *fileService) ListFiles(userID uint, noteID *uint) ([]database.File, error) {
	query := s.db.Where("user_id = ?", userID)
	if noteID != nil {
		query = query.Where("note_id = ?", *noteID)
	}

	var files []database.File
	if err := query.Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return files, nil
}

// UpdateFile 更新文件元数据
// NoteID为0时解除挂接，非0时校验目标笔记归属后挂接
func (s *fileService) UpdateFile(userID, fileID uint, req *UpdateFileRequest) (*database.File, error) {
	file, err := s.checker.File(userID, fileID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Filename != nil {
		if *req.Filename == "" {
			return nil, apperrors.NewWithDetails(apperrors.ErrInvalidParams, "filename cannot be empty")
		}
		updates["filename"] = *req.Filename
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.NoteID != nil {
		if *req.NoteID == 0 {
			updates["note_id"] = nil
		} else {
			if _, err := s.checker.Note(userID, *req.NoteID); err != nil {
				return nil, err
			}
			updates["note_id"] = *req.NoteID
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(file).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.checker.File(userID, fileID)
}

// DeleteFile 删除文件元数据记录
// 对象存储中的文件字节不在此处清理
func (s *fileService) DeleteFile(userID, fileID uint) error {
	file, err := s.checker.File(userID, fileID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(file).Error; err != nil {
		logger.Errorf("Failed to delete file record %d: %v", fileID, err)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Infof("File record deleted: id=%d user=%d", fileID, userID)
	return nil
}
