package handler

import (
	"github.com/gin-gonic/gin"

	"notedeck/internal/middleware"
	"notedeck/internal/response"
	"notedeck/internal/service/tag"
)

// TagHandler 标签处理器
type TagHandler struct {
	tagService tag.Service
}

// NewTagHandler 创建标签处理器实例
func NewTagHandler(tagService tag.Service) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// CreateTag 创建标签
// @Summary 创建标签
// @Description 标签名称在用户范围内必须唯一
// @Tags 标签管理
// @Accept json
// @Produce json
// @Param tag body tag.CreateTagRequest true "创建标签请求"
// @Success 201 {object} response.Envelope{data=database.Tag} "创建成功"
// @Failure 400 {object} response.Envelope "请求参数错误或名称重复"
// @Router /api/v1/tags [post]
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req tag.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	created, err := h.tagService.CreateTag(middleware.UserID(c), &req)
	if err != nil {
		response.FromError(c, "标签创建失败", err)
		return
	}
	response.Created(c, "标签创建成功", created)
}

// ListTags 获取标签列表
// @Summary 获取用户的全部标签
// @Tags 标签管理
// @Produce json
// @Success 200 {object} response.Envelope{data=[]database.Tag} "获取成功"
// @Router /api/v1/tags [get]
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.ListTags(middleware.UserID(c))
	if err != nil {
		response.FromError(c, "获取标签列表失败", err)
		return
	}
	response.Success(c, "获取成功", tags)
}

// GetTag 获取标签详情
// @Summary 获取标签详情
// @Tags 标签管理
// @Produce json
// @Param id path int true "标签ID"
// @Success 200 {object} response.Envelope{data=database.Tag} "获取成功"
// @Failure 404 {object} response.Envelope "标签不存在"
// @Router /api/v1/tags/{id} [get]
func (h *TagHandler) GetTag(c *gin.Context) {
	tagID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "标签ID无效", nil)
		return
	}

	found, err := h.tagService.GetTag(middleware.UserID(c), tagID)
	if err != nil {
		response.FromError(c, "获取标签失败", err)
		return
	}
	response.Success(c, "获取成功", found)
}

// UpdateTag 更新标签
// @Summary 更新标签
// @Tags 标签管理
// @Accept json
// @Produce json
// @Param id path int true "标签ID"
// @Param tag body tag.UpdateTagRequest true "更新标签请求"
// @Success 200 {object} response.Envelope{data=database.Tag} "更新成功"
// @Failure 404 {object} response.Envelope "标签不存在"
// @Router /api/v1/tags/{id} [put]
func (h *TagHandler) UpdateTag(c *gin.Context) {
	tagID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "标签ID无效", nil)
		return
	}

	var req tag.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	updated, err := h.tagService.UpdateTag(middleware.UserID(c), tagID, &req)
	if err != nil {
		response.FromError(c, "标签更新失败", err)
		return
	}
	response.Success(c, "标签更新成功", updated)
}

// DeleteTag 删除标签
// @Summary 删除标签及其全部笔记关联
// @Tags 标签管理
// @Produce json
// @Param id path int true "标签ID"
// @Success 200 {object} response.Envelope "删除成功"
// @Failure 404 {object} response.Envelope "标签不存在"
// @Router /api/v1/tags/{id} [delete]
func (h *TagHandler) DeleteTag(c *gin.Context) {
	tagID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "标签ID无效", nil)
		return
	}

	if err := h.tagService.DeleteTag(middleware.UserID(c), tagID); err != nil {
		response.FromError(c, "标签删除失败", err)
		return
	}
	response.Success(c, "标签删除成功", nil)
}

// AttachTag 为笔记打标签
// @Summary 为笔记打标签
// @Tags 标签管理
// @Produce json
// @Param id path int true "笔记ID"
// @Param tagId path int true "标签ID"
// @Success 200 {object} response.Envelope "关联成功"
// @Failure 400 {object} response.Envelope "标签已关联"
// @Failure 404 {object} response.Envelope "笔记或标签不存在"
// @Router /api/v1/notes/{id}/tags/{tagId} [post]
func (h *TagHandler) AttachTag(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}
	tagID, ok := parseIDParam(c, "tagId")
	if !ok {
		response.BadRequest(c, "标签ID无效", nil)
		return
	}

	if err := h.tagService.AttachTag(middleware.UserID(c), noteID, tagID); err != nil {
		response.FromError(c, "标签关联失败", err)
		return
	}
	response.Success(c, "标签关联成功", nil)
}

// DetachTag 移除笔记上的标签
// @Summary 移除笔记上的标签
// @Tags 标签管理
// @Produce json
// @Param id path int true "笔记ID"
// @Param tagId path int true "标签ID"
// @Success 200 {object} response.Envelope "移除成功"
// @Failure 400 {object} response.Envelope "标签未关联"
// @Failure 404 {object} response.Envelope "笔记或标签不存在"
// @Router /api/v1/notes/{id}/tags/{tagId} [delete]
func (h *TagHandler) DetachTag(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}
	tagID, ok := parseIDParam(c, "tagId")
	if !ok {
		response.BadRequest(c, "标签ID无效", nil)
		return
	}

	if err := h.tagService.DetachTag(middleware.UserID(c), noteID, tagID); err != nil {
		response.FromError(c, "标签移除失败", err)
		return
	}
	response.Success(c, "标签移除成功", nil)
}

// ListNoteTags 获取笔记的标签
// @Summary 获取笔记上的全部标签
// @Tags 标签管理
// @Produce json
// @Param id path int true "笔记ID"
// @Success 200 {object} response.Envelope{data=[]database.Tag} "获取成功"
// @Failure 404 {object} response.Envelope "笔记不存在"
// @Router /api/v1/notes/{id}/tags [get]
func (h *TagHandler) ListNoteTags(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}

	tags, err := h.tagService.ListNoteTags(middleware.UserID(c), noteID)
	if err != nil {
		response.FromError(c, "获取笔记标签失败", err)
		return
	}
	response.Success(c, "获取成功", tags)
}
