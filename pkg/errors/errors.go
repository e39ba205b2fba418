package errors

import (
	"errors"
	"time"

	"github.com/dejay09121/Noteapp/pkg/code"
	"github.com/dejay09121/Noteapp/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AppError 统一应用错误结构体
// 包含错误码、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status 是否成功，恒为 false
	Status bool `json:"status"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`

	httpStatus int
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap 支持 errors.Is / errors.As 沿错误链查找
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is 与 *code.Code 按错误码比较
func (e *AppError) Is(target error) bool {
	if c, ok := target.(*code.Code); ok {
		return c.Code() == e.Code
	}
	return false
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:       c.Code(),
		Message:    c.Msg(),
		Details:    c.Details(),
		Cause:      cause,
		Timestamp:  time.Now(),
		httpStatus: c.StatusCode(),
	}
}

// WithDetails 设置详情并返回自身（链式调用）
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = details
	return e
}

// Is 判断 err 链上是否带有指定错误码
func Is(err error, c *code.Code) bool {
	return errors.Is(err, c)
}

// CodeOf 提取错误链上的错误码，无法识别时返回 ErrorServerInternal
func CodeOf(err error) *code.Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		for _, c := range []*code.Code{
			code.ErrorAuthenticationAbsent,
			code.ErrorRemoteFailure,
			code.ErrorMediaFailure,
			code.ErrorUploadInProgress,
			code.ErrorInvalidParams,
			code.ErrorNoteNotFound,
			code.ErrorNoteCreateFailed,
			code.ErrorNoteUpdateFailed,
			code.ErrorNoteDeleteFailed,
			code.ErrorNoteListFailed,
			code.ErrorNotUserAuthToken,
			code.ErrorInvalidUserAuthToken,
			code.ErrorNotFound,
			code.ErrorNotFoundAPI,
			code.ErrorTooManyRequests,
			code.ErrorInvalidStorageType,
			code.ErrorStorageNotConfigure,
		} {
			if c.Code() == appErr.Code {
				return c
			}
		}
	}
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return codeErr
	}
	return code.ErrorServerInternal
}

// ErrorResponse 统一错误响应处理
// 从 gin.Context 获取 TraceID，将错误转换为 AppError 并返回 JSON 响应
func ErrorResponse(c *gin.Context, err error) {
	traceID := c.GetString(logger.FieldTraceID)

	var appErr *AppError
	if errors.As(err, &appErr) {
		appErr.TraceID = traceID
		c.JSON(appErr.statusCode(), appErr)
		return
	}

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		c.JSON(codeErr.StatusCode(), &AppError{
			Code:      codeErr.Code(),
			Message:   codeErr.Msg(),
			Details:   codeErr.Details(),
			TraceID:   traceID,
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(code.ErrorServerInternal.StatusCode(), &AppError{
		Code:      code.ErrorServerInternal.Code(),
		Message:   code.ErrorServerInternal.Msg(),
		TraceID:   traceID,
		Timestamp: time.Now(),
	})
}

func (e *AppError) statusCode() int {
	if e.httpStatus == 0 {
		return code.ErrorServerInternal.StatusCode()
	}
	return e.httpStatus
}
