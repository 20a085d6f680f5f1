package handler

import (
	"github.com/gin-gonic/gin"

	"notedeck/internal/database"
	"notedeck/internal/middleware"
	"notedeck/internal/response"
	"notedeck/internal/service/aggregate"
	"notedeck/internal/service/note"
)

// NoteHandler 笔记处理器
type NoteHandler struct {
	noteService note.Service
	aggService  aggregate.Service
}

// NewNoteHandler 创建笔记处理器实例
func NewNoteHandler(noteService note.Service, aggService aggregate.Service) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		aggService:  aggService,
	}
}

// noteDetail 笔记详情响应，元数据、正文加统计
type noteDetail struct {
	note.NoteView
	Counts *aggregate.NoteCounts `json:"counts"`
}

// CreateNote 创建笔记
// @Summary 创建笔记
// @Description 标题必填；未指定笔记本时自动解析默认笔记本；返回带统计的笔记详情
// @Tags 笔记管理
// @Accept json
// @Produce json
// @Param note body note.CreateNoteRequest true "创建笔记请求"
// @Success 201 {object} response.Envelope{data=handler.noteDetail} "创建成功"
// @Failure 400 {object} response.Envelope "请求参数错误"
// @Router /api/v1/notes [post]
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req note.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	created, err := h.noteService.CreateNote(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		response.FromError(c, "笔记创建失败", err)
		return
	}

	// 新建笔记没有任何关联行，统计全为零，但视图结构与详情接口一致
	counts, err := h.aggService.NoteCounts([]uint{created.ID})
	if err != nil {
		response.FromError(c, "笔记创建失败", err)
		return
	}
	detail := noteDetail{
		NoteView: note.NoteView{Note: *created, Content: req.Content},
		Counts:   counts[created.ID],
	}
	response.Created(c, "笔记创建成功", detail)
}

// GetNote 获取笔记详情
// @Summary 获取笔记详情（含正文和统计）
// @Tags 笔记管理
// @Produce json
// @Param id path int true "笔记ID"
// @Success 200 {object} response.Envelope{data=handler.noteDetail} "获取成功"
// @Failure 404 {object} response.Envelope "笔记不存在"
// @Router /api/v1/notes/{id} [get]
func (h *NoteHandler) GetNote(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}

	view, err := h.noteService.GetNote(c.Request.Context(), middleware.UserID(c), noteID)
	if err != nil {
		response.FromError(c, "获取笔记失败", err)
		return
	}

	counts, err := h.aggService.NoteCounts([]uint{view.ID})
	if err != nil {
		response.FromError(c, "获取笔记失败", err)
		return
	}
	response.Success(c, "获取成功", noteDetail{NoteView: *view, Counts: counts[view.ID]})
}

// ListNotes 获取笔记列表
// @Summary 获取笔记列表
// @Description 支持按笔记本和状态标志过滤；默认排除回收站笔记；传page参数时返回分页结构
// @Tags 笔记管理
// @Produce json
// @Param notebook_id query int false "按笔记本过滤"
// @Param pinned query bool false "按置顶状态过滤"
// @Param archived query bool false "按归档状态过滤"
// @Param trashed query bool false "按回收站状态过滤"
// @Param page query int false "页码，从1开始"
// @Param page_size query int false "每页数量，默认20"
// @Success 200 {object} response.Envelope{data=[]database.Note} "获取成功"
// @Router /api/v1/notes [get]
func (h *NoteHandler) ListNotes(c *gin.Context) {
	notebookID, ok := parseUintQuery(c, "notebook_id")
	if !ok {
		response.BadRequest(c, "笔记本ID无效", nil)
		return
	}
	pinned, ok := parseBoolQuery(c, "pinned")
	if !ok {
		response.BadRequest(c, "pinned参数无效", nil)
		return
	}
	archived, ok := parseBoolQuery(c, "archived")
	if !ok {
		response.BadRequest(c, "archived参数无效", nil)
		return
	}
	trashed, ok := parseBoolQuery(c, "trashed")
	if !ok {
		response.BadRequest(c, "trashed参数无效", nil)
		return
	}
	page, ok := parseIntQuery(c, "page")
	if !ok {
		response.BadRequest(c, "page参数无效", nil)
		return
	}
	pageSize, ok := parseIntQuery(c, "page_size")
	if !ok {
		response.BadRequest(c, "page_size参数无效", nil)
		return
	}

	filter := &note.ListNotesFilter{
		NotebookID: notebookID,
		Pinned:     pinned,
		Archived:   archived,
		Trashed:    trashed,
	}

	if page != nil {
		if *page < 1 {
			response.BadRequest(c, "page参数无效", nil)
			return
		}
		size := 20
		if pageSize != nil && *pageSize >= 1 && *pageSize <= 100 {
			size = *pageSize
		}
		notes, total, err := h.noteService.ListNotesPaged(middleware.UserID(c), filter, *page, size)
		if err != nil {
			response.FromError(c, "获取笔记列表失败", err)
			return
		}
		response.SuccessWithPage(c, "获取成功", notes, total, *page, size)
		return
	}

	notes, err := h.noteService.ListNotes(middleware.UserID(c), filter)
	if err != nil {
		response.FromError(c, "获取笔记列表失败", err)
		return
	}
	response.Success(c, "获取成功", notes)
}

// UpdateNote 更新笔记元数据
// @Summary 更新笔记元数据
// @Description 只更新标题和所属笔记本，不影响版本号和同步状态
// @Tags 笔记管理
// @Accept json
// @Produce json
// @Param id path int true "笔记ID"
// @Param note body note.UpdateNoteRequest true "更新笔记请求"
// @Success 200 {object} response.Envelope{data=database.Note} "更新成功"
// @Failure 404 {object} response.Envelope "笔记不存在"
// @Router /api/v1/notes/{id} [put]
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}

	var req note.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	updated, err := h.noteService.UpdateNote(c.Request.Context(), middleware.UserID(c), noteID, &req)
	if err != nil {
		response.FromError(c, "笔记更新失败", err)
		return
	}
	response.Success(c, "笔记更新成功", updated)
}

// SaveContent 保存笔记正文
// @Summary 保存笔记正文
// @Description 写入内容文档并递增版本号，标记为已同步
// @Tags 笔记管理
// @Accept json
// @Produce json
// @Param id path int true "笔记ID"
// @Param content body note.SaveContentRequest true "保存内容请求"
// @Success 200 {object} response.Envelope{data=database.Note} "保存成功"
// @Failure 404 {object} response.Envelope "笔记不存在"
// @Router /api/v1/notes/{id}/content [put]
func (h *NoteHandler) SaveContent(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}

	var req note.SaveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	updated, err := h.noteService.SaveContent(c.Request.Context(), middleware.UserID(c), noteID, &req)
	if err != nil {
		response.FromError(c, "笔记内容保存失败", err)
		return
	}
	response.Success(c, "笔记内容保存成功", updated)
}

// Pin 置顶笔记
// @Summary 置顶笔记
// @Tags 笔记管理
// @Produce json
// @Param id path int true "笔记ID"
// @Success 200 {object} response.Envelope{data=database.Note} "操作成功"
// @Router /api/v1/notes/{id}/pin [post]
func (h *NoteHandler) Pin(c *gin.Context) {
	h.transition(c, "笔记置顶", h.noteService.Pin)
}

// Unpin 取消置顶
// @Summary 取消置顶
// @Tags 笔记管理
// @Produce json
// @Param id path int true "笔记ID"
// @Success 200 {object} response.Envelope{data=database.Note} "操作成功"
// @Router /api/v1/notes/{id}/unpin [post]
func (h *NoteHandler) Unpin(c *gin.Context) {
	h.transition(c, "取消置顶", h.noteService.Unpin)
}

// Archive 归档笔记
// @Summary 归档笔记（同时清除置顶）
// @Tags 笔记管理
// @Produce json
// @Param id path int true "笔记ID"
// @Success 200 {object} response.Envelope{data=database.Note} "操作成功"
// @Router /api/v1/notes/{id}/archive [post]
func (h *NoteHandler) Archive(c *gin.Context) {
	h.transition(c, "笔记归档", h.noteService.Archive)
}

// Unarchive 取消归档
// @Summary 取消归档
// @Tags 笔记管理
// @Produce json
// @Param id path int true "笔记ID"
// @Success 200 {object} response.Envelope{data=database.Note} "操作成功"
// @Router /api/v1/notes/{id}/unarchive [post]
func (h *NoteHandler) Unarchive(c *gin.Context) {
	h.transition(c, "取消归档", h.noteService.Unarchive)
}

// Trash 移入回收站
// @Summary 把笔记移入回收站（同时清除置顶和归档）
// @Tags 笔记管理
// @Produce json
// @Param id path int true "笔记ID"
// @Success 200 {object} response.Envelope{data=database.Note} "操作成功"
// @Router /api/v1/notes/{id}/trash [post]
func (h *NoteHandler) Trash(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}

	updated, err := h.noteService.Trash(c.Request.Context(), middleware.UserID(c), noteID)
	if err != nil {
		response.FromError(c, "笔记移入回收站失败", err)
		return
	}
	response.Success(c, "笔记已移入回收站", updated)
}

// Restore 从回收站恢复
// @Summary 从回收站恢复笔记（无条件回到活动状态）
// @Tags 笔记管理
// @Produce json
// @Param id path int true "笔记ID"
// @Success 200 {object} response.Envelope{data=database.Note} "操作成功"
// @Router /api/v1/notes/{id}/restore [post]
func (h *NoteHandler) Restore(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}

	updated, err := h.noteService.Restore(c.Request.Context(), middleware.UserID(c), noteID)
	if err != nil {
		response.FromError(c, "笔记恢复失败", err)
		return
	}
	response.Success(c, "笔记恢复成功", updated)
}

// DeleteNote 永久删除笔记
// @Summary 永久删除笔记（任务和标签关联随之删除，文件解除挂接）
// @Tags 笔记管理
// @Produce json
// @Param id path int true "笔记ID"
// @Success 200 {object} response.Envelope "删除成功"
// @Failure 404 {object} response.Envelope "笔记不存在"
// @Router /api/v1/notes/{id} [delete]
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}

	if err := h.noteService.DeleteNote(c.Request.Context(), middleware.UserID(c), noteID); err != nil {
		response.FromError(c, "笔记删除失败", err)
		return
	}
	response.Success(c, "笔记删除成功", nil)
}

// SearchNotes 搜索笔记
// @Summary 按标题子串搜索笔记
// @Tags 笔记管理
// @Produce json
// @Param q query string true "搜索关键字"
// @Success 200 {object} response.Envelope{data=[]database.Note} "搜索成功"
// @Router /api/v1/notes/search [get]
func (h *NoteHandler) SearchNotes(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		response.BadRequest(c, "搜索关键字不能为空", nil)
		return
	}

	notes, err := h.noteService.SearchNotes(middleware.UserID(c), keyword)
	if err != nil {
		response.FromError(c, "笔记搜索失败", err)
		return
	}
	response.Success(c, "搜索成功", notes)
}

// transition 状态流转的公共处理流程
func (h *NoteHandler) transition(c *gin.Context, action string, fn func(userID, noteID uint) (*database.Note, error)) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "笔记ID无效", nil)
		return
	}

	updated, err := fn(middleware.UserID(c), noteID)
	if err != nil {
		response.FromError(c, action+"失败", err)
		return
	}
	response.Success(c, action+"成功", updated)
}
