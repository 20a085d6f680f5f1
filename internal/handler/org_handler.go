package handler

import (
	"github.com/gin-gonic/gin"

	"notedeck/internal/database"
	"notedeck/internal/middleware"
	"notedeck/internal/response"
	"notedeck/internal/service/aggregate"
	"notedeck/internal/service/organization"
)

// OrganizationHandler 笔记栈和笔记本处理器
type OrganizationHandler struct {
	orgService organization.Service
	aggService aggregate.Service
}

// NewOrganizationHandler 创建组织层级处理器实例
func NewOrganizationHandler(orgService organization.Service, aggService aggregate.Service) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
		aggService: aggService,
	}
}

// CreateStack 创建笔记栈
// @Summary 创建笔记栈
// @Tags 组织层级
// @Accept json
// @Produce json
// @Param stack body organization.CreateStackRequest true "创建笔记栈请求"
// @Success 201 {object} response.Envelope{data=database.Stack} "创建成功"
// @Failure 400 {object} response.Envelope "请求参数错误"
// @Router /api/v1/stacks [post]
func (h *OrganizationHandler) CreateStack(c *gin.Context) {
	var req organization.CreateStackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	stack, err := h.orgService.CreateStack(middleware.UserID(c), &req)
	if err != nil {
		response.FromError(c, "笔记栈创建失败", err)
		return
	}
	response.Created(c, "笔记栈创建成功", stack)
}

// ListStacks 获取笔记栈列表（含统计）
// @Summary 获取笔记栈列表
// @Tags 组织层级
// @Produce json
// @Success 200 {object} response.Envelope{data=[]aggregate.StackView} "获取成功"
// @Router /api/v1/stacks [get]
func (h *OrganizationHandler) ListStacks(c *gin.Context) {
	stacks, err := h.orgService.ListStacks(middleware.UserID(c))
	if err != nil {
		response.FromError(c, "获取笔记栈列表失败", err)
		return
	}

	views, err := h.aggService.StackViews(stacks)
	if err != nil {
		response.FromError(c, "获取笔记栈列表失败", err)
		return
	}
	response.Success(c, "获取成功", views)
}

// GetStack 获取笔记栈详情（含统计）
// @Summary 获取笔记栈详情
// @Tags 组织层级
// @Produce json
// @Param id path int true "笔记栈ID"
// @Success 200 {object} response.Envelope{data=aggregate.StackView} "获取成功"
// @Failure 404 {object} response.Envelope "笔记栈不存在"
// @Router /api/v1/stacks/{id} [get]
func (h *OrganizationHandler) GetStack(c *gin.Context) {
	stackID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记栈ID无效", nil)
		return
	}

	stack, err := h.orgService.GetStack(middleware.UserID(c), stackID)
	if err != nil {
		response.FromError(c, "获取笔记栈失败", err)
		return
	}

	views, err := h.aggService.StackViews([]database.Stack{*stack})
	if err != nil {
		response.FromError(c, "获取笔记栈失败", err)
		return
	}
	response.Success(c, "获取成功", views[0])
}

// UpdateStack 更新笔记栈
// @Summary 更新笔记栈
// @Tags 组织层级
// @Accept json
// @Produce json
// @Param id path int true "笔记栈ID"
// @Param stack body organization.UpdateStackRequest true "更新笔记栈请求"
// @Success 200 {object} response.Envelope{data=database.Stack} "更新成功"
// @Failure 404 {object} response.Envelope "笔记栈不存在"
// @Router /api/v1/stacks/{id} [put]
func (h *OrganizationHandler) UpdateStack(c *gin.Context) {
	stackID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记栈ID无效", nil)
		return
	}

	var req organization.UpdateStackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	stack, err := h.orgService.UpdateStack(middleware.UserID(c), stackID, &req)
	if err != nil {
		response.FromError(c, "笔记栈更新失败", err)
		return
	}
	response.Success(c, "笔记栈更新成功", stack)
}

// DeleteStack 删除笔记栈
// @Summary 删除笔记栈（子笔记本脱栈保留）
// @Tags 组织层级
// @Produce json
// @Param id path int true "笔记栈ID"
// @Success 200 {object} response.Envelope "删除成功"
// @Failure 404 {object} response.Envelope "笔记栈不存在"
// @Router /api/v1/stacks/{id} [delete]
func (h *OrganizationHandler) DeleteStack(c *gin.Context) {
	stackID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记栈ID无效", nil)
		return
	}

	if err := h.orgService.DeleteStack(middleware.UserID(c), stackID); err != nil {
		response.FromError(c, "笔记栈删除失败", err)
		return
	}
	response.Success(c, "笔记栈删除成功", nil)
}

// CreateNotebook 创建笔记本
// @Summary 创建笔记本
// @Tags 组织层级
// @Accept json
// @Produce json
// @Param notebook body organization.CreateNotebookRequest true "创建笔记本请求"
// @Success 201 {object} response.Envelope{data=database.Notebook} "创建成功"
// @Failure 400 {object} response.Envelope "请求参数错误"
// @Router /api/v1/notebooks [post]
func (h *OrganizationHandler) CreateNotebook(c *gin.Context) {
	var req organization.CreateNotebookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	notebook, err := h.orgService.CreateNotebook(middleware.UserID(c), &req)
	if err != nil {
		response.FromError(c, "笔记本创建失败", err)
		return
	}
	response.Created(c, "笔记本创建成功", notebook)
}

// ListNotebooks 获取笔记本列表（含统计）
// @Summary 获取笔记本列表
// @Tags 组织层级
// @Produce json
// @Param stack_id query int false "按笔记栈过滤"
// @Success 200 {object} response.Envelope{data=[]aggregate.NotebookView} "获取成功"
// @Router /api/v1/notebooks [get]
func (h *OrganizationHandler) ListNotebooks(c *gin.Context) {
	stackID, ok := parseUintQuery(c, "stack_id")
	if !ok {
		response.BadRequest(c, "笔记栈ID无效", nil)
		return
	}

	notebooks, err := h.orgService.ListNotebooks(middleware.UserID(c), stackID)
	if err != nil {
		response.FromError(c, "获取笔记本列表失败", err)
		return
	}

	views, err := h.aggService.NotebookViews(notebooks)
	if err != nil {
		response.FromError(c, "获取笔记本列表失败", err)
		return
	}
	response.Success(c, "获取成功", views)
}

// GetNotebook 获取笔记本详情（含统计）
// @Summary 获取笔记本详情
// @Tags 组织层级
// @Produce json
// @Param id path int true "笔记本ID"
// @Success 200 {object} response.Envelope{data=aggregate.NotebookView} "获取成功"
// @Failure 404 {object} response.Envelope "笔记本不存在"
// @Router /api/v1/notebooks/{id} [get]
func (h *OrganizationHandler) GetNotebook(c *gin.Context) {
	notebookID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记本ID无效", nil)
		return
	}

	notebook, err := h.orgService.GetNotebook(middleware.UserID(c), notebookID)
	if err != nil {
		response.FromError(c, "获取笔记本失败", err)
		return
	}

	views, err := h.aggService.NotebookViews([]database.Notebook{*notebook})
	if err != nil {
		response.FromError(c, "获取笔记本失败", err)
		return
	}
	response.Success(c, "获取成功", views[0])
}

// UpdateNotebook 更新笔记本
// @Summary 更新笔记本
// @Tags 组织层级
// @Accept json
// @Produce json
// @Param id path int true "笔记本ID"
// @Param notebook body organization.UpdateNotebookRequest true "更新笔记本请求"
// @Success 200 {object} response.Envelope{data=database.Notebook} "更新成功"
// @Failure 404 {object} response.Envelope "笔记本不存在"
// @Router /api/v1/notebooks/{id} [put]
func (h *OrganizationHandler) UpdateNotebook(c *gin.Context) {
	notebookID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记本ID无效", nil)
		return
	}

	var req organization.UpdateNotebookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	notebook, err := h.orgService.UpdateNotebook(middleware.UserID(c), notebookID, &req)
	if err != nil {
		response.FromError(c, "笔记本更新失败", err)
		return
	}
	response.Success(c, "笔记本更新成功", notebook)
}

// MoveNotebook 把笔记本移入笔记栈
// @Summary 把笔记本移入笔记栈
// @Tags 组织层级
// @Produce json
// @Param id path int true "笔记栈ID"
// @Param notebookId path int true "笔记本ID"
// @Success 200 {object} response.Envelope{data=database.Notebook} "移动成功"
// @Failure 404 {object} response.Envelope "笔记栈或笔记本不存在"
// @Router /api/v1/stacks/{id}/notebooks/{notebookId} [post]
func (h *OrganizationHandler) MoveNotebook(c *gin.Context) {
	stackID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记栈ID无效", nil)
		return
	}
	notebookID, ok := parseIDParam(c, "notebookId")
	if !ok {
		response.BadRequest(c, "笔记本ID无效", nil)
		return
	}

	notebook, err := h.orgService.MoveNotebook(middleware.UserID(c), notebookID, stackID)
	if err != nil {
		response.FromError(c, "笔记本移动失败", err)
		return
	}
	response.Success(c, "笔记本移动成功", notebook)
}

// UnstackNotebook 把笔记本移出笔记栈
// @Summary 把笔记本移出所属笔记栈
// @Tags 组织层级
// @Produce json
// @Param id path int true "笔记本ID"
// @Success 200 {object} response.Envelope{data=database.Notebook} "移出成功"
// @Failure 404 {object} response.Envelope "笔记本不存在"
// @Router /api/v1/notebooks/{id}/stack [delete]
func (h *OrganizationHandler) UnstackNotebook(c *gin.Context) {
	notebookID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记本ID无效", nil)
		return
	}

	notebook, err := h.orgService.UnstackNotebook(middleware.UserID(c), notebookID)
	if err != nil {
		response.FromError(c, "笔记本移出失败", err)
		return
	}
	response.Success(c, "笔记本移出成功", notebook)
}

// DeleteNotebook 删除笔记本
// @Summary 删除笔记本（子笔记迁移到默认笔记本）
// @Tags 组织层级
// @Produce json
// @Param id path int true "笔记本ID"
// @Success 200 {object} response.Envelope "删除成功"
// @Failure 404 {object} response.Envelope "笔记本不存在"
// @Router /api/v1/notebooks/{id} [delete]
func (h *OrganizationHandler) DeleteNotebook(c *gin.Context) {
	notebookID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记本ID无效", nil)
		return
	}

	if err := h.orgService.DeleteNotebook(middleware.UserID(c), notebookID); err != nil {
		response.FromError(c, "笔记本删除失败", err)
		return
	}
	response.Success(c, "笔记本删除成功", nil)
}
