// Package organization 提供笔记栈和笔记本的组织层级服务
// 层级规则：用户 → 笔记栈(可选) → 笔记本 → 笔记
// 删除操作不级联销毁子资源：删除笔记栈时子笔记本脱栈，
// 删除笔记本时子笔记被重新归属到默认笔记本
package organization

import (
	"fmt"

	"gorm.io/gorm"

	"notedeck/internal/database"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/logger"
	"notedeck/internal/service/ownership"
)

// CreateStackRequest 创建笔记栈请求
type CreateStackRequest struct {
	Name        string `json:"name" binding:"required,max=100"` // 笔记栈名称，必填
	Description string `json:"description" binding:"max=500"`   // 描述，可选
	ColorID     *uint  `json:"color_id"`                        // 颜色标识，可选
}

// UpdateStackRequest 更新笔记栈请求，仅更新非空字段
type UpdateStackRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`       // 新名称
	Description *string `json:"description" binding:"omitempty,max=500"` // 新描述
	ColorID     *uint   `json:"color_id"`                               // 新颜色标识
	SortOrder   *int    `json:"sort_order"`                             // 新排序顺序
}

// CreateNotebookRequest 创建笔记本请求
type CreateNotebookRequest struct {
	Name        string `json:"name" binding:"required,max=100"` // 笔记本名称，必填
	Description string `json:"description" binding:"max=500"`   // 描述，可选
	ColorID     *uint  `json:"color_id"`                        // 颜色标识，可选
	StackID     *uint  `json:"stack_id"`                        // 所属笔记栈ID，可选
}

// UpdateNotebookRequest 更新笔记本请求，仅更新非空字段
type UpdateNotebookRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`       // 新名称
	Description *string `json:"description" binding:"omitempty,max=500"` // 新描述
	ColorID     *uint   `json:"color_id"`                               // 新颜色标识
	SortOrder   *int    `json:"sort_order"`                             // 新排序顺序
}

// Service 组织层级服务接口
type Service interface {
	// CreateStack 创建笔记栈
	CreateStack(userID uint, req *CreateStackRequest) (*database.Stack, error)
	// GetStack 获取笔记栈详情
	GetStack(userID, stackID uint) (*database.Stack, error)
	// ListStacks 获取用户的全部笔记栈
	ListStacks(userID uint) ([]database.Stack, error)
	// UpdateStack 更新笔记栈
	UpdateStack(userID, stackID uint, req *UpdateStackRequest) (*database.Stack, error)
	// DeleteStack 删除笔记栈，子笔记本脱栈保留
	DeleteStack(userID, stackID uint) error

	// CreateNotebook 创建笔记本
	CreateNotebook(userID uint, req *CreateNotebookRequest) (*database.Notebook, error)
	// GetNotebook 获取笔记本详情
	GetNotebook(userID, notebookID uint) (*database.Notebook, error)
	// ListNotebooks 获取用户的笔记本，stackID非空时按笔记栈过滤
	ListNotebooks(userID uint, stackID *uint) ([]database.Notebook, error)
	// UpdateNotebook 更新笔记本
	UpdateNotebook(userID, notebookID uint, req *UpdateNotebookRequest) (*database.Notebook, error)
	// MoveNotebook 把笔记本移入指定笔记栈
	MoveNotebook(userID, notebookID, stackID uint) (*database.Notebook, error)
	// UnstackNotebook 把笔记本移出所属笔记栈
	UnstackNotebook(userID, notebookID uint) (*database.Notebook, error)
	// DeleteNotebook 删除笔记本，子笔记重新归属到默认笔记本
	DeleteNotebook(userID, notebookID uint) error

	// ResolveNotebook 解析笔记应归属的笔记本
	ResolveNotebook(tx *gorm.DB, userID uint, notebookID *uint) (*database.Notebook, error)
}

type organizationService struct {
	db      *gorm.DB
	checker *ownership.Checker
}

// NewService 创建组织层级服务实例
func NewService(db *gorm.DB) Service {
	return &organizationService{
		db:      db,
		checker: ownership.NewChecker(db),
	}
}

// CreateStack 创建笔记栈，排序顺序追加到该用户现有笔记栈之后
func (s *organizationService) CreateStack(userID uint, req *CreateStackRequest) (*database.Stack, error) {
	stack := &database.Stack{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		ColorID:     req.ColorID,
		SortOrder:   nextSortOrder(s.db, "stacks", "user_id = ?", userID),
	}

	if err := s.db.Create(stack).Error; err != nil {
		logger.Errorf("Failed to create stack for user %d: %v", userID, err)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Infof("Stack created: id=%d user=%d name=%s", stack.ID, userID, stack.Name)
	return stack, nil
}

// GetStack 获取笔记栈详情，包含其下笔记本
func (s *organizationService) GetStack(userID, stackID uint) (*database.Stack, error) {
	stack, err := s.checker.Stack(userID, stackID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("stack_id = ?", stack.ID).
		Order("sort_order ASC, id ASC").
		Find(&stack.Notebooks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return stack, nil
}

// ListStacks 获取用户的全部笔记栈，按排序顺序返回
func (s *organizationService) ListStacks(userID uint) ([]database.Stack, error) {
	var stacks []database.Stack
	err := s.db.Where("user_id = ?", userID).
		Order("sort_order ASC, id ASC").
		Find(&stacks).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return stacks, nil
}

// UpdateStack 更新笔记栈的非空字段
func (s *organizationService) UpdateStack(userID, stackID uint, req *UpdateStackRequest) (*database.Stack, error) {
	stack, err := s.checker.Stack(userID, stackID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.NewWithDetails(apperrors.ErrInvalidParams, "stack name cannot be empty")
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ColorID != nil {
		updates["color_id"] = *req.ColorID
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	if len(updates) > 0 {
		if err := s.db.Model(stack).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return stack, nil
}

// DeleteStack 删除笔记栈
// 栈下的笔记本不会被删除，而是脱栈（stack_id置空），与删除流程在同一事务内完成
func (s *organizationService) DeleteStack(userID, stackID uint) error {
	stack, err := s.checker.Stack(userID, stackID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.Notebook{}).
			Where("stack_id = ?", stack.ID).
			Update("stack_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unstack notebooks: %w", err)
		}
		if err := tx.Delete(stack).Error; err != nil {
			return fmt.Errorf("failed to delete stack: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Errorf("Failed to delete stack %d: %v", stackID, err)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Infof("Stack deleted: id=%d user=%d", stackID, userID)
	return nil
}

// CreateNotebook 创建笔记本
// 指定了笔记栈时先校验归属；排序顺序在所属作用域（栈内或未入栈）内追加
func (s *organizationService) CreateNotebook(userID uint, req *CreateNotebookRequest) (*database.Notebook, error) {
	if req.StackID != nil {
		if _, err := s.checker.Stack(userID, *req.StackID); err != nil {
			return nil, err
		}
	}

	notebook := &database.Notebook{
		UserID:      userID,
		StackID:     req.StackID,
		Name:        req.Name,
		Description: req.Description,
		ColorID:     req.ColorID,
		SortOrder:   notebookSortOrder(s.db, userID, req.StackID),
	}

	if err := s.db.Create(notebook).Error; err != nil {
		logger.Errorf("Failed to create notebook for user %d: %v", userID, err)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Infof("Notebook created: id=%d user=%d name=%s", notebook.ID, userID, notebook.Name)
	return notebook, nil
}

// GetNotebook 获取笔记本详情
func (s *organizationService) GetNotebook(userID, notebookID uint) (*database.Notebook, error) {
	return s.checker.Notebook(userID, notebookID)
}

// ListNotebooks 获取用户的笔记本列表
func (s *organizationService) ListNotebooks(userID uint, stackID *uint) ([]database.Notebook, error) {
	query := s.db.Where("user_id = ?", userID)
	if stackID != nil {
		query = query.Where("stack_id = ?", *stackID)
	}

	var notebooks []database.Notebook
	if err := query.Order("sort_order ASC, id ASC").Find(&notebooks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notebooks, nil
}

// UpdateNotebook 更新笔记本的非空字段
func (s *organizationService) UpdateNotebook(userID, notebookID uint, req *UpdateNotebookRequest) (*database.Notebook, error) {
	notebook, err := s.checker.Notebook(userID, notebookID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.NewWithDetails(apperrors.ErrInvalidParams, "notebook name cannot be empty")
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ColorID != nil {
		updates["color_id"] = *req.ColorID
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	if len(updates) > 0 {
		if err := s.db.Model(notebook).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return notebook, nil
}

// MoveNotebook 把笔记本移入指定笔记栈，目标栈必须属于同一用户
func (s *organizationService) MoveNotebook(userID, notebookID, stackID uint) (*database.Notebook, error) {
	notebook, err := s.checker.Notebook(userID, notebookID)
	if err != nil {
		return nil, err
	}
	stack, err := s.checker.Stack(userID, stackID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"stack_id":   stack.ID,
		"sort_order": notebookSortOrder(s.db, userID, &stack.ID),
	}
	if err := s.db.Model(notebook).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Infof("Notebook moved: id=%d stack=%d", notebookID, stackID)
	return notebook, nil
}

// UnstackNotebook 把笔记本移出所属笔记栈，已经未入栈时是幂等操作
func (s *organizationService) UnstackNotebook(userID, notebookID uint) (*database.Notebook, error) {
	notebook, err := s.checker.Notebook(userID, notebookID)
	if err != nil {
		return nil, err
	}

	if notebook.StackID == nil {
		return notebook, nil
	}

	updates := map[string]interface{}{
		"stack_id":   nil,
		"sort_order": notebookSortOrder(s.db, userID, nil),
	}
	if err := s.db.Model(notebook).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notebook, nil
}

// DeleteNotebook 删除笔记本
// 笔记本下的笔记不随之删除：在同一事务内重新解析默认笔记本并整体迁移，
// 保证笔记的notebook_id非空不变量不被破坏
// 被删除的笔记本自身会从解析候选中排除；若它是用户仅有的笔记本，
// 则先创建新的默认笔记本再迁移
func (s *organizationService) DeleteNotebook(userID, notebookID uint) error {
	notebook, err := s.checker.Notebook(userID, notebookID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var noteCount int64
		if err := tx.Model(&database.Note{}).
			Where("notebook_id = ?", notebook.ID).
			Count(&noteCount).Error; err != nil {
			return fmt.Errorf("failed to count notes: %w", err)
		}

		if noteCount > 0 {
			target, err := s.resolveNotebookExcluding(tx, userID, notebook.ID)
			if err != nil {
				return err
			}
			if err := tx.Model(&database.Note{}).
				Where("notebook_id = ?", notebook.ID).
				Update("notebook_id", target.ID).Error; err != nil {
				return fmt.Errorf("failed to reassign notes: %w", err)
			}
			logger.Infof("Reassigned %d notes from notebook %d to %d", noteCount, notebook.ID, target.ID)
		}

		if err := tx.Delete(notebook).Error; err != nil {
			return fmt.Errorf("failed to delete notebook: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Errorf("Failed to delete notebook %d: %v", notebookID, err)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Infof("Notebook deleted: id=%d user=%d", notebookID, userID)
	return nil
}

// ResolveNotebook 解析笔记应归属的笔记本
// 解析顺序：指定了笔记本ID且归属校验通过时使用它；
// 否则使用该用户最早创建的笔记本；一个笔记本都没有时创建默认笔记本
func (s *organizationService) ResolveNotebook(tx *gorm.DB, userID uint, notebookID *uint) (*database.Notebook, error) {
	if notebookID != nil {
		var notebook database.Notebook
		err := tx.Where("id = ? AND user_id = ?", *notebookID, userID).First(&notebook).Error
		if err == nil {
			return &notebook, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.New(apperrors.ErrNotebookNotFound)
	}
	return s.resolveNotebookExcluding(tx, userID, 0)
}

// resolveNotebookExcluding 解析默认笔记本，excludeID非零时排除该笔记本
func (s *organizationService) resolveNotebookExcluding(tx *gorm.DB, userID uint, excludeID uint) (*database.Notebook, error) {
	query := tx.Where("user_id = ?", userID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var notebook database.Notebook
	err := query.Order("created_at ASC, id ASC").First(&notebook).Error
	if err == nil {
		return &notebook, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	notebook = database.Notebook{
		UserID: userID,
		Name:   database.DefaultNotebookName,
	}
	if err := tx.Create(&notebook).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Infof("Default notebook created: id=%d user=%d", notebook.ID, userID)
	return &notebook, nil
}

// notebookSortOrder 计算笔记本在所属作用域内的下一个排序顺序
func notebookSortOrder(db *gorm.DB, userID uint, stackID *uint) int {
	query := db.Model(&database.Notebook{}).Where("user_id = ?", userID)
	if stackID != nil {
		query = query.Where("stack_id = ?", *stackID)
	} else {
		query = query.Where("stack_id IS NULL")
	}

	var maxOrder int
	query.Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder)
	return maxOrder + 1
}

// nextSortOrder 计算指定表在给定条件下的下一个排序顺序
func nextSortOrder(db *gorm.DB, table string, condition string, args ...interface{}) int {
	var maxOrder int
	db.Table(table).Where(condition, args...).
		Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder)
	return maxOrder + 1
}
