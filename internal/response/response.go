// Package response 提供统一的API响应格式
// 所有接口返回 {success, msg, data, error} 信封结构
// HTTP状态码表达错误类别：400参数错误、401未认证、404资源不存在或无权访问、500内部错误
// 唯一例外是日程冲突：按业务约定返回200且success=false
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "notedeck/internal/errors"
)

// Envelope API统一响应格式
type Envelope struct {
	Success bool        `json:"success"`         // 请求是否成功
	Msg     string      `json:"msg"`             // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 错误信息
}

// Paginated 分页响应格式
type Paginated struct {
	Data       interface{} `json:"data"`        // 数据列表
	Total      int64       `json:"total"`       // 总数量
	Page       int         `json:"page"`        // 当前页码
	PageSize   int         `json:"page_size"`   // 每页数量
	TotalPages int64       `json:"total_pages"` // 总页数
}

// Success 成功响应
func Success(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Msg:     msg,
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{
		Success: true,
		Msg:     msg,
		Data:    data,
	})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, msg string, list interface{}, total int64, page, pageSize int) {
	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Msg:     msg,
		Data: Paginated{
			Data:       list,
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	})
}

// BadRequest 400参数错误响应
func BadRequest(c *gin.Context, msg string, err error) {
	envelope := Envelope{
		Success: false,
		Msg:     msg,
	}
	if err != nil {
		envelope.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, envelope)
}

// Unauthorized 401未认证响应
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Envelope{
		Success: false,
		Msg:     msg,
	})
}

// NotFound 404响应
// 资源不存在和属于其他用户的资源都统一报告为"未找到"
func NotFound(c *gin.Context, msg string, err error) {
	envelope := Envelope{
		Success: false,
		Msg:     msg,
	}
	if err != nil {
		envelope.Error = err.Error()
	}
	c.JSON(http.StatusNotFound, envelope)
}

// InternalError 500内部错误响应，透传底层错误信息
func InternalError(c *gin.Context, msg string, err error) {
	envelope := Envelope{
		Success: false,
		Msg:     msg,
	}
	if err != nil {
		envelope.Error = err.Error()
	}
	c.JSON(http.StatusInternalServerError, envelope)
}

// ConflictAdvisory 日程冲突提示响应
// 冲突是软性业务规则：HTTP 200，success=false
func ConflictAdvisory(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Envelope{
		Success: false,
		Msg:     msg,
	})
}

// FromError 根据错误类别返回对应响应
// 服务层返回的AppError在此统一映射到HTTP状态码
func FromError(c *gin.Context, msg string, err error) {
	switch {
	case apperrors.IsConflictAdvisory(err):
		if appErr, ok := apperrors.GetAppError(err); ok {
			ConflictAdvisory(c, appErr.Message)
			return
		}
		ConflictAdvisory(c, msg)
	case apperrors.IsValidation(err):
		BadRequest(c, msg, err)
	case apperrors.IsNotFound(err):
		NotFound(c, msg, err)
	default:
		InternalError(c, msg, err)
	}
}
