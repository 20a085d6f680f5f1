// Package ownership 提供统一的资源归属校验
// 所有按ID访问用户资源的操作都先经过归属校验：
// 记录不存在与记录属于他人返回完全相同的not_found错误，
// 避免通过错误差异探测他人资源是否存在
package ownership

import (
	"errors"

	"gorm.io/gorm"

	"notedeck/internal/database"
	apperrors "notedeck/internal/errors"
)

// Checker 资源归属校验器
type Checker struct {
	db *gorm.DB
}

// NewChecker 创建归属校验器
func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// Stack 校验笔记本组归属，返回归属于该用户的记录
func (c *Checker) Stack(userID, stackID uint) (*database.Stack, error) {
	var stack database.Stack
	err := c.db.Where("id = ? AND user_id = ?", stackID, userID).First(&stack).Error
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrStackNotFound)
	}
	return &stack, nil
}

// Notebook 校验笔记本归属
func (c *Checker) Notebook(userID, notebookID uint) (*database.Notebook, error) {
	var notebook database.Notebook
	err := c.db.Where("id = ? AND user_id = ?", notebookID, userID).First(&notebook).Error
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrNotebookNotFound)
	}
	return &notebook, nil
}

// Note 校验笔记归属
func (c *Checker) Note(userID, noteID uint) (*database.Note, error) {
	var note database.Note
	err := c.db.Where("id = ? AND user_id = ?", noteID, userID).First(&note).Error
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrNoteNotFound)
	}
	return &note, nil
}

// Tag 校验标签归属
func (c *Checker) Tag(userID, tagID uint) (*database.Tag, error) {
	var tag database.Tag
	err := c.db.Where("id = ? AND user_id = ?", tagID, userID).First(&tag).Error
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrTagNotFound)
	}
	return &tag, nil
}

// Task 校验任务归属
func (c *Checker) Task(userID, taskID uint) (*database.Task, error) {
	var task database.Task
	err := c.db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrTaskNotFound)
	}
	return &task, nil
}

// File 校验文件归属
func (c *Checker) File(userID, fileID uint) (*database.File, error) {
	var file database.File
	err := c.db.Where("id = ? AND user_id = ?", fileID, userID).First(&file).Error
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrFileNotFound)
	}
	return &file, nil
}

func notFoundOr(err error, code apperrors.ErrorCode) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(code)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
