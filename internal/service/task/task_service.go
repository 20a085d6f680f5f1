// Package task 提供任务管理和日程冲突检测服务
// 冲突按半开区间[start,end)判定：边界相接不算冲突
// 冲突是软性业务提示而不是硬性约束，通过专门的错误码上报，
// 接口层把它映射为HTTP 200加success=false
package task

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"notedeck/internal/database"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/logger"
	"notedeck/internal/service/ownership"
)

// CreateTaskRequest 创建任务请求
// 名称、日期、起止时间必填；其余字段可选
type CreateTaskRequest struct {
	Label       string  `json:"label" binding:"required,max=200"`      // 任务名称，必填
	Description string  `json:"description" binding:"max=500"`         // 描述，可选
	NoteID      *uint   `json:"note_id"`                               // 挂接的笔记ID，可选
	StartDate   *string `json:"start_date"`                            // 日期，YYYY-MM-DD
	StartTime   *string `json:"start_time"`                            // 开始时间，HH:MM[:SS]
	EndTime     *string `json:"end_time"`                              // 结束时间，HH:MM[:SS]
	Reminder    *string `json:"reminder"`                              // 提醒时间，RFC3339，可选
	AssignedTo  *string `json:"assigned_to" binding:"omitempty,max=100"` // 指派对象，可选
	Priority    *string `json:"priority" binding:"omitempty,max=20"`   // 优先级，可选
	Flagged     bool    `json:"flagged"`                               // 是否标旗
}

// UpdateTaskRequest 更新任务请求，仅更新非空字段
type UpdateTaskRequest struct {
	Label       *string `json:"label" binding:"omitempty,max=200"`       // 新名称
	Description *string `json:"description" binding:"omitempty,max=500"` // 新描述
	StartDate   *string `json:"start_date"`                              // 新日期
	StartTime   *string `json:"start_time"`                              // 新开始时间
	EndTime     *string `json:"end_time"`                                // 新结束时间
	AssignedTo  *string `json:"assigned_to" binding:"omitempty,max=100"` // 新指派对象
	Priority    *string `json:"priority" binding:"omitempty,max=20"`     // 新优先级
	Flagged     *bool   `json:"flagged"`                                 // 新标旗状态
}

// ReorderItem 任务重排序条目
type ReorderItem struct {
	ID        uint `json:"id" binding:"required"` // 任务ID
	SortOrder int  `json:"sort_order"`            // 新排序顺序
}

// ReorderRequest 任务重排序请求
type ReorderRequest struct {
	Items []ReorderItem `json:"items" binding:"required,min=1,dive"` // 排序条目列表
}

// TaskView 任务对外视图
// due_date是start_date的只读别名；end_date字段历史上从未有值，始终为null
type TaskView struct {
	database.Task
	DueDate *string     `json:"due_date"` // start_date的别名
	EndDate interface{} `json:"end_date"` // 始终为null
}

// NewTaskView 构造任务视图
func NewTaskView(task database.Task) TaskView {
	return TaskView{Task: task, DueDate: task.StartDate}
}

// NewTaskViews 批量构造任务视图
func NewTaskViews(tasks []database.Task) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, NewTaskView(t))
	}
	return views
}

// Service 任务服务接口
type Service interface {
	// CreateTask 创建任务，与同用户同日期的已有任务冲突时返回冲突提示
	CreateTask(userID uint, req *CreateTaskRequest) (*database.Task, error)
	// GetTask 获取任务详情
	GetTask(userID, taskID uint) (*database.Task, error)
	// ListTasks 获取任务列表，可按笔记或日期过滤
	ListTasks(userID uint, noteID *uint, date *string) ([]database.Task, error)
	// UpdateTask 更新任务，时间字段变化时以合成后的三元组重新检测冲突
	UpdateTask(userID, taskID uint, req *UpdateTaskRequest) (*database.Task, error)
	// Reorder 批量重排序，任一任务归属校验失败则整体拒绝
	Reorder(userID uint, req *ReorderRequest) error
	// Complete 标记任务完成
	Complete(userID, taskID uint) (*database.Task, error)
	// Uncomplete 取消任务完成标记
	Uncomplete(userID, taskID uint) (*database.Task, error)
	// DeleteTask 删除任务
	DeleteTask(userID, taskID uint) error
	// HasConflict 检测给定时间段是否与该用户的已有任务冲突
	HasConflict(userID uint, date, startTime, endTime string, excludeTaskID uint) (bool, error)
}

type taskService struct {
	db      *gorm.DB
	checker *ownership.Checker

	// 每用户一把内存锁，串行化"检测冲突→写入"两步
	// 单进程部署下足以消除并发写入绕过冲突检测的竞态
	userLocks sync.Map
}

// NewService 创建任务服务实例
func NewService(db *gorm.DB) Service {
	return &taskService{
		db:      db,
		checker: ownership.NewChecker(db),
	}
}

func (s *taskService) lockUser(userID uint) *sync.Mutex {
	actual, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// HasConflict 检测时间段冲突
// 只比较同一用户、同一日期、起止时间都非空的任务；excludeTaskID非零时排除该任务
// 起始不早于结束的区间视为空区间，永远不冲突，也从不报错
// 重叠判定：newStart < existingEnd && existingStart < newEnd（半开区间）
func (s *taskService) HasConflict(userID uint, date, startTime, endTime string, excludeTaskID uint) (bool, error) {
	newStart, ok := parseMinutes(startTime)
	if !ok {
		return false, apperrors.NewWithDetails(apperrors.ErrInvalidParams,
			fmt.Sprintf("invalid start_time format: %s", startTime))
	}
	newEnd, ok := parseMinutes(endTime)
	if !ok {
		return false, apperrors.NewWithDetails(apperrors.ErrInvalidParams,
			fmt.Sprintf("invalid end_time format: %s", endTime))
	}
	if newStart >= newEnd {
		return false, nil
	}

	query := s.db.Where(
		"user_id = ? AND start_date = ? AND start_time IS NOT NULL AND end_time IS NOT NULL",
		userID, date)
	if excludeTaskID != 0 {
		query = query.Where("id <> ?", excludeTaskID)
	}

	var candidates []database.Task
	if err := query.Find(&candidates).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, existing := range candidates {
		existingStart, ok := parseMinutes(*existing.StartTime)
		if !ok {
			continue
		}
		existingEnd, ok := parseMinutes(*existing.EndTime)
		if !ok {
			continue
		}
		if newStart < existingEnd && existingStart < newEnd {
			return true, nil
		}
	}
	return false, nil
}

// CreateTask 创建任务
// 名称、日期、起止时间缺一不可；挂接笔记时先校验笔记归属
// 检测到冲突时不写入，返回冲突提示错误
func (s *taskService) CreateTask(userID uint, req *CreateTaskRequest) (*database.Task, error) {
	if req.StartDate == nil || req.StartTime == nil || req.EndTime == nil {
		return nil, apperrors.New(apperrors.ErrTaskTimeRequired)
	}

	if req.NoteID != nil {
		if _, err := s.checker.Note(userID, *req.NoteID); err != nil {
			return nil, err
		}
	}

	reminder, err := parseReminder(req.Reminder)
	if err != nil {
		return nil, err
	}

	lock := s.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	conflict, err := s.HasConflict(userID, *req.StartDate, *req.StartTime, *req.EndTime, 0)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.New(apperrors.ErrScheduleConflict)
	}

	task := &database.Task{
		UserID:      userID,
		NoteID:      req.NoteID,
		Label:       req.Label,
		Description: req.Description,
		StartDate:   req.StartDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Reminder:    reminder,
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
		Flagged:     req.Flagged,
		SortOrder:   s.nextSortOrder(userID, req.NoteID),
	}

	if err := s.db.Create(task).Error; err != nil {
		logger.Errorf("Failed to create task for user %d: %v", userID, err)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Infof("Task created: id=%d user=%d date=%s %s-%s",
		task.ID, userID, *req.StartDate, *req.StartTime, *req.EndTime)
	return task, nil
}

// GetTask 获取任务详情
func (s *taskService) GetTask(userID, taskID uint) (*database.Task, error) {
	return s.checker.Task(userID, taskID)
}

// ListTasks 获取任务列表
func (s *taskService) ListTasks(userID uint, noteID *uint, date *string) ([]database.Task, error) {
	query := s.db.Where("user_id = ?", userID)
	if noteID != nil {
		query = query.Where("note_id = ?", *noteID)
	}
	if date != nil {
		query = query.Where("start_date = ?", *date)
	}

	var tasks []database.Task
	err := query.Order("sort_order ASC, id ASC").Find(&tasks).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tasks, nil
}

// UpdateTask 更新任务
// 时间相关字段变化时，以"请求值覆盖现有值"合成的三元组重新检测冲突，
// 排除任务自身；三元组不完整时跳过检测
func (s *taskService) UpdateTask(userID, taskID uint, req *UpdateTaskRequest) (*database.Task, error) {
	if req.Label != nil && *req.Label == "" {
		return nil, apperrors.NewWithDetails(apperrors.ErrInvalidParams, "task label cannot be empty")
	}

	task, err := s.checker.Task(userID, taskID)
	if err != nil {
		return nil, err
	}

	effectiveDate := task.StartDate
	effectiveStart := task.StartTime
	effectiveEnd := task.EndTime
	timeChanged := false
	if req.StartDate != nil {
		effectiveDate = req.StartDate
		timeChanged = true
	}
	if req.StartTime != nil {
		effectiveStart = req.StartTime
		timeChanged = true
	}
	if req.EndTime != nil {
		effectiveEnd = req.EndTime
		timeChanged = true
	}

	lock := s.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	if timeChanged && effectiveDate != nil && effectiveStart != nil && effectiveEnd != nil {
		conflict, err := s.HasConflict(userID, *effectiveDate, *effectiveStart, *effectiveEnd, task.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, apperrors.New(apperrors.ErrScheduleConflict)
		}
	}

	updates := map[string]interface{}{}
	if req.Label != nil {
		updates["label"] = *req.Label
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.StartTime != nil {
		updates["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		updates["end_time"] = *req.EndTime
	}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.Flagged != nil {
		updates["flagged"] = *req.Flagged
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.checker.Task(userID, taskID)
}

// Reorder 批量重排序
// 先逐一校验全部条目的归属，任一失败则什么都不改；
// 校验通过后在单个事务内写入全部新排序
func (s *taskService) Reorder(userID uint, req *ReorderRequest) error {
	for _, item := range req.Items {
		if _, err := s.checker.Task(userID, item.ID); err != nil {
			return err
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range req.Items {
			if err := tx.Model(&database.Task{}).
				Where("id = ? AND user_id = ?", item.ID, userID).
				Update("sort_order", item.SortOrder).Error; err != nil {
				return fmt.Errorf("failed to reorder task %d: %w", item.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Errorf("Failed to reorder tasks for user %d: %v", userID, err)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Complete 标记任务完成
func (s *taskService) Complete(userID, taskID uint) (*database.Task, error) {
	return s.setCompleted(userID, taskID, true)
}

// Uncomplete 取消任务完成标记
func (s *taskService) Uncomplete(userID, taskID uint) (*database.Task, error) {
	return s.setCompleted(userID, taskID, false)
}

func (s *taskService) setCompleted(userID, taskID uint, completed bool) (*database.Task, error) {
	task, err := s.checker.Task(userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(task).Update("completed", completed).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	task.Completed = completed
	return task, nil
}

// DeleteTask 删除任务
func (s *taskService) DeleteTask(userID, taskID uint) error {
	task, err := s.checker.Task(userID, taskID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(task).Error; err != nil {
		logger.Errorf("Failed to delete task %d: %v", taskID, err)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Infof("Task deleted: id=%d user=%d", taskID, userID)
	return nil
}

// nextSortOrder 计算任务在所属作用域内的下一个排序顺序
// 挂接笔记的任务在笔记内排序，独立任务在用户的独立任务集合内排序
func (s *taskService) nextSortOrder(userID uint, noteID *uint) int {
	query := s.db.Model(&database.Task{}).Where("user_id = ?", userID)
	if noteID != nil {
		query = query.Where("note_id = ?", *noteID)
	} else {
		query = query.Where("note_id IS NULL")
	}

	var maxOrder int
	query.Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder)
	return maxOrder + 1
}

// parseReminder 解析RFC3339格式的提醒时间
func parseReminder(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, apperrors.NewWithDetails(apperrors.ErrInvalidParams,
			fmt.Sprintf("invalid reminder format: %s", *value))
	}
	return &t, nil
}
