package handler

import (
	"github.com/gin-gonic/gin"

	"notedeck/internal/middleware"
	"notedeck/internal/response"
	"notedeck/internal/service/task"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	taskService task.Service
}

// NewTaskHandler 创建任务处理器实例
func NewTaskHandler(taskService task.Service) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTask 创建任务
// @Summary 创建任务
// @Description 名称、日期、起止时间必填；与已有日程冲突时返回200且success=false
// @Tags 任务管理
// @Accept json
// @Produce json
// @Param task body task.CreateTaskRequest true "创建任务请求"
// @Success 201 {object} response.Envelope{data=task.TaskView} "创建成功"
// @Failure 400 {object} response.Envelope "请求参数错误"
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req task.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	created, err := h.taskService.CreateTask(middleware.UserID(c), &req)
	if err != nil {
		response.FromError(c, "任务创建失败", err)
		return
	}
	response.Created(c, "任务创建成功", task.NewTaskView(*created))
}

// GetTask 获取任务详情
// @Summary 获取任务详情
// @Tags 任务管理
// @Produce json
// @Param id path int true "任务ID"
// @Success 200 {object} response.Envelope{data=task.TaskView} "获取成功"
// @Failure 404 {object} response.Envelope "任务不存在"
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "任务ID无效", nil)
		return
	}

	found, err := h.taskService.GetTask(middleware.UserID(c), taskID)
	if err != nil {
		response.FromError(c, "获取任务失败", err)
		return
	}
	response.Success(c, "获取成功", task.NewTaskView(*found))
}

// ListTasks 获取任务列表
// @Summary 获取任务列表
// @Tags 任务管理
// @Produce json
// @Param note_id query int false "按笔记过滤"
// @Param date query string false "按日期过滤（YYYY-MM-DD）"
// @Success 200 {object} response.Envelope{data=[]task.TaskView} "获取成功"
// @Router /api/v1/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	noteID, ok := parseUintQuery(c, "note_id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}

	var date *string
	if raw := c.Query("date"); raw != "" {
		date = &raw
	}

	tasks, err := h.taskService.ListTasks(middleware.UserID(c), noteID, date)
	if err != nil {
		response.FromError(c, "获取任务列表失败", err)
		return
	}
	response.Success(c, "获取成功", task.NewTaskViews(tasks))
}

// UpdateTask 更新任务
// @Summary 更新任务
// @Description 时间字段变化时以合成后的时间三元组重新检测冲突（排除自身）
// @Tags 任务管理
// @Accept json
// @Produce json
// @Param id path int true "任务ID"
// @Param task body task.UpdateTaskRequest true "更新任务请求"
// @Success 200 {object} response.Envelope{data=task.TaskView} "更新成功"
// @Failure 404 {object} response.Envelope "任务不存在"
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "任务ID无效", nil)
		return
	}

	var req task.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	updated, err := h.taskService.UpdateTask(middleware.UserID(c), taskID, &req)
	if err != nil {
		response.FromError(c, "任务更新失败", err)
		return
	}
	response.Success(c, "任务更新成功", task.NewTaskView(*updated))
}

// Reorder 批量重排序任务
// @Summary 批量重排序任务
// @Description 任一任务归属校验失败时整体拒绝，不做部分更新
// @Tags 任务管理
// @Accept json
// @Produce json
// @Param items body task.ReorderRequest true "重排序请求"
// @Success 200 {object} response.Envelope "排序成功"
// @Failure 404 {object} response.Envelope "任务不存在"
// @Router /api/v1/tasks/reorder [post]
func (h *TaskHandler) Reorder(c *gin.Context) {
	var req task.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	if err := h.taskService.Reorder(middleware.UserID(c), &req); err != nil {
		response.FromError(c, "任务排序失败", err)
		return
	}
	response.Success(c, "任务排序成功", nil)
}

// Complete 标记任务完成
// @Summary 标记任务完成
// @Tags 任务管理
// @Produce json
// @Param id path int true "任务ID"
// @Success 200 {object} response.Envelope{data=task.TaskView} "操作成功"
// @Router /api/v1/tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "任务ID无效", nil)
		return
	}

	updated, err := h.taskService.Complete(middleware.UserID(c), taskID)
	if err != nil {
		response.FromError(c, "任务完成标记失败", err)
		return
	}
	response.Success(c, "任务已完成", task.NewTaskView(*updated))
}

// Uncomplete 取消任务完成标记
// @Summary 取消任务完成标记
// @Tags 任务管理
// @Produce json
// @Param id path int true "任务ID"
// @Success 200 {object} response.Envelope{data=task.TaskView} "操作成功"
// @Router /api/v1/tasks/{id}/uncomplete [post]
func (h *TaskHandler) Uncomplete(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "任务ID无效", nil)
		return
	}

	updated, err := h.taskService.Uncomplete(middleware.UserID(c), taskID)
	if err != nil {
		response.FromError(c, "取消任务完成标记失败", err)
		return
	}
	response.Success(c, "任务完成标记已取消", task.NewTaskView(*updated))
}

// DeleteTask 删除任务
// @Summary 删除任务
// @Tags 任务管理
// @Produce json
// @Param id path int true "任务ID"
// @Success 200 {object} response.Envelope "删除成功"
// @Failure 404 {object} response.Envelope "任务不存在"
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "任务ID无效", nil)
		return
	}

	if err := h.taskService.DeleteTask(middleware.UserID(c), taskID); err != nil {
		response.FromError(c, "任务删除失败", err)
		return
	}
	response.Success(c, "任务删除成功", nil)
}
