package handler

import (
	"github.com/gin-gonic/gin"

	"notedeck/internal/middleware"
	"notedeck/internal/response"
	"notedeck/internal/service/settings"
)

// SettingsHandler 用户设置处理器
type SettingsHandler struct {
	settingsService settings.Service
}

// NewSettingsHandler 创建设置处理器实例
func NewSettingsHandler(settingsService settings.Service) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings 获取用户设置
// @Summary 获取用户设置（首次访问时自动创建默认设置）
// @Tags 用户设置
// @Produce json
// @Success 200 {object} response.Envelope{data=database.Settings} "获取成功"
// @Router /api/v1/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	found, err := h.settingsService.GetSettings(middleware.UserID(c))
	if err != nil {
		response.FromError(c, "获取设置失败", err)
		return
	}
	response.Success(c, "获取成功", found)
}

// UpdateSettings 更新用户设置
// @Summary 更新用户设置
// @Tags 用户设置
// @Accept json
// @Produce json
// @Param settings body settings.UpdateSettingsRequest true "更新设置请求"
// @Success 200 {object} response.Envelope{data=database.Settings} "更新成功"
// @Router /api/v1/settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req settings.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误", err)
		return
	}

	updated, err := h.settingsService.UpdateSettings(middleware.UserID(c), &req)
	if err != nil {
		response.FromError(c, "设置更新失败", err)
		return
	}
	response.Success(c, "设置更新成功", updated)
}
