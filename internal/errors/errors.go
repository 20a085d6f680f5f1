// Package errors 提供应用程序统一的错误码和错误类型
// 错误分为四类：参数校验错误、资源不存在（或无权访问）、日程冲突提示、内部错误
// 其中"不存在"和"无权访问"对调用方完全不可区分，避免泄露跨用户资源是否存在
package errors

import (
	"errors"
	"fmt"

	"notedeck/internal/i18n"
)

// ErrorCode 错误码类型
type ErrorCode int

// 定义错误码常量
const (
	// 通用错误码 (1000-1999)
	ErrSuccess        ErrorCode = 0    // 成功
	ErrInternalServer ErrorCode = 1000 // 服务器内部错误
	ErrInvalidParams  ErrorCode = 1001 // 参数错误
	ErrUnauthorized   ErrorCode = 1002 // 未授权
	ErrNotFound       ErrorCode = 1004 // 资源未找到

	// 组织层级相关错误码 (2000-2999)
	ErrStackNotFound    ErrorCode = 2000 // 笔记栈未找到
	ErrNotebookNotFound ErrorCode = 2001 // 笔记本未找到

	// 笔记相关错误码 (3000-3999)
	ErrNoteNotFound     ErrorCode = 3000 // 笔记未找到
	ErrNoteTitleMissing ErrorCode = 3001 // 笔记标题缺失

	// 标签和文件相关错误码 (4000-4999)
	ErrTagNotFound       ErrorCode = 4000 // 标签未找到
	ErrTagAlreadyExists  ErrorCode = 4001 // 标签名称已存在
	ErrTagNotAssociated  ErrorCode = 4002 // 标签未关联到笔记
	ErrTagAlreadyApplied ErrorCode = 4003 // 标签已关联到笔记
	ErrFileNotFound      ErrorCode = 4100 // 文件未找到

	// 任务调度相关错误码 (5000-5999)
	ErrTaskNotFound     ErrorCode = 5000 // 任务未找到
	ErrTaskTimeRequired ErrorCode = 5001 // 任务时间字段缺失
	ErrScheduleConflict ErrorCode = 5002 // 日程时间冲突（业务提示，不是协议错误）
)

// AppError 应用错误结构体
type AppError struct {
	// 错误码
	Code ErrorCode `json:"code"`
	// 错误消息
	Message string `json:"message"`
	// 详细错误信息
	Details string `json:"details,omitempty"`
	// 原始错误
	OriginalError error `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误，支持errors.Is/As链式判断
func (e *AppError) Unwrap() error {
	return e.OriginalError
}

// WithDetails 添加详细错误信息
func (e *AppError) WithDetails(details string) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// New 创建新的应用错误，消息根据错误码从i18n语言包解析
func New(code ErrorCode) *AppError {
	return &AppError{
		Code:    code,
		Message: GetErrorMessage(code),
	}
}

// NewWithDetails 创建带详细信息的应用错误
func NewWithDetails(code ErrorCode, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: GetErrorMessage(code),
		Details: details,
	}
}

// Wrap 包装原始错误
func Wrap(code ErrorCode, err error) *AppError {
	appErr := &AppError{
		Code:          code,
		Message:       GetErrorMessage(code),
		OriginalError: err,
	}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// GetAppError 从错误中提取应用错误
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf 返回错误对应的错误码，非应用错误一律视为内部错误
func CodeOf(err error) ErrorCode {
	if appErr, ok := GetAppError(err); ok {
		return appErr.Code
	}
	return ErrInternalServer
}

// IsNotFound 判断错误是否属于"不存在或无权访问"类别
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case ErrNotFound, ErrStackNotFound, ErrNotebookNotFound,
		ErrNoteNotFound, ErrTagNotFound, ErrFileNotFound, ErrTaskNotFound:
		return true
	}
	return false
}

// IsValidation 判断错误是否属于参数校验类别
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case ErrInvalidParams, ErrNoteTitleMissing, ErrTaskTimeRequired, ErrTagAlreadyExists,
		ErrTagNotAssociated, ErrTagAlreadyApplied:
		return true
	}
	return false
}

// IsConflictAdvisory 判断错误是否为日程冲突提示
// 冲突按业务约定通过HTTP 200返回success=false，而不是错误状态码
func IsConflictAdvisory(err error) bool {
	return CodeOf(err) == ErrScheduleConflict
}

// 错误码到i18n键的映射
var errorCodeToKeyMap = map[ErrorCode]string{
	ErrSuccess:        "success",
	ErrInternalServer: "internal_server_error",
	ErrInvalidParams:  "invalid_params",
	ErrUnauthorized:   "unauthorized",
	ErrNotFound:       "not_found",

	ErrStackNotFound:    "stack_not_found",
	ErrNotebookNotFound: "notebook_not_found",

	ErrNoteNotFound:     "note_not_found",
	ErrNoteTitleMissing: "note_title_missing",

	ErrTagNotFound:       "tag_not_found",
	ErrTagAlreadyExists:  "tag_already_exists",
	ErrTagNotAssociated:  "tag_not_associated",
	ErrTagAlreadyApplied: "tag_already_applied",
	ErrFileNotFound:      "file_not_found",

	ErrTaskNotFound:     "task_not_found",
	ErrTaskTimeRequired: "task_time_required",
	ErrScheduleConflict: "schedule_conflict",
}

// GetErrorMessage 根据错误码获取错误消息（使用默认语言）
func GetErrorMessage(code ErrorCode) string {
	return GetErrorMessageWithLang(code, i18n.GetInstance().GetDefaultLanguage())
}

// GetErrorMessageWithLang 根据错误码和语言获取错误消息
func GetErrorMessageWithLang(code ErrorCode, lang string) string {
	key, exists := errorCodeToKeyMap[code]
	if !exists {
		key = "unknown_error"
	}
	return i18n.GetInstance().Translate(key, lang)
}
