package handler

import (
	"github.com/gin-gonic/gin"

	"notedeck/internal/middleware"
	"notedeck/internal/response"
	"notedeck/internal/service/file"
)

// FileHandler 文件元数据处理器
type FileHandler struct {
	fileService file.Service
}

// NewFileHandler 创建文件处理器实例
func NewFileHandler(fileService file.Service) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// CreateFile 登记文件元数据
// @Summary 登记文件元数据
// @Description 文件字节已由对象存储管理，这里只登记元数据记录
// @Tags 文件管理
// @Accept json
// @Produce json
// @Param file body file.CreateFileRequest true "登记文件请求"
// @Success 201 {object} response.Envelope{data=database.File} "登记成功"
// @Failure 400 {object} response.Envelope "请求参数错误"
// @Router /api/v1/files [post]
func (h *FileHandler) CreateFile(c *gin.Context) {
	var req file.CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	created, err := h.fileService.CreateFile(middleware.UserID(c), &req)
	if err != nil {
		response.FromError(c, "文件登记失败", err)
		return
	}
	response.Created(c, "文件登记成功", created)
}

// ListFiles 获取文件列表
// @Summary 获取文件列表
// @Tags 文件管理
// @Produce json
// @Param note_id query int false "按笔记过滤"
// @Success 200 {object} response.Envelope{data=[]database.File} "获取成功"
// @Router /api/v1/files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	noteID, ok := parseUintQuery(c, "note_id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}

	files, err := h.fileService.ListFiles(middleware.UserID(c), noteID)
	if err != nil {
		response.FromError(c, "获取文件列表失败", err)
		return
	}
	response.Success(c, "获取成功", files)
}

// GetFile 获取文件元数据
// @Summary 获取文件元数据
// @Tags 文件管理
// @Produce json
// @Param id path int true "文件ID"
// @Success 200 {object} response.Envelope{data=database.File} "获取成功"
// @Failure 404 {object} response.Envelope "文件不存在"
// @Router /api/v1/files/{id} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	fileID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "文件ID无效", nil)
		return
	}

	found, err := h.fileService.GetFile(middleware.UserID(c), fileID)
	if err != nil {
		response.FromError(c, "获取文件失败", err)
		return
	}
	response.Success(c, "获取成功", found)
}

// UpdateFile 更新文件元数据
// @Summary 更新文件元数据（支持挂接和解除挂接笔记）
// @Tags 文件管理
// @Accept json
// @Produce json
// @Param id path int true "文件ID"
// @Param file body file.UpdateFileRequest true "更新文件请求"
// @Success 200 {object} response.Envelope{data=database.File} "更新成功"
// @Failure 404 {object} response.Envelope "文件不存在"
// @Router /api/v1/files/{id} [put]
func (h *FileHandler) UpdateFile(c *gin.Context) {
	fileID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "文件ID无效", nil)
		return
	}

	var req file.UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	updated, err := h.fileService.UpdateFile(middleware.UserID(c), fileID, &req)
	if err != nil {
		response.FromError(c, "文件更新失败", err)
		return
	}
	response.Success(c, "文件更新成功", updated)
}

// DeleteFile 删除文件元数据
// @Summary 删除文件元数据记录
// @Tags 文件管理
// @Produce json
// @Param id path int true "文件ID"
// @Success 200 {object} response.Envelope "删除成功"
// @Failure 404 {object} response.Envelope "文件不存在"
// @Router /api/v1/files/{id} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	fileID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "文件ID无效", nil)
		return
	}

	if err := h.fileService.DeleteFile(middleware.UserID(c), fileID); err != nil {
		response.FromError(c, "文件删除失败", err)
		return
	}
	response.Success(c, "文件删除成功", nil)
}
