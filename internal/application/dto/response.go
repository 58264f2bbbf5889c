package dto

import (
	"time"

	"github.com/turtacn/kam/pkg/errors"
)

// APIResponse 通用 API 响应结构
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO 错误信息 DTO
type ErrorDTO struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Description string            `json:"description,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// SuccessResponse 创建成功响应
func SuccessResponse(data interface{}, traceID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse 创建错误响应
func ErrorResponse(err error, traceID string) *APIResponse {
	var errorDTO *ErrorDTO

	if kamErr, ok := errors.AsKamError(err); ok {
		details := make(map[string]string, len(kamErr.Metadata()))
		for k, v := range kamErr.Metadata() {
			if s, ok := v.(string); ok {
				details[k] = s
			}
		}
		if len(details) == 0 {
			details = nil
		}
		errorDTO = &ErrorDTO{
			Code:        string(kamErr.Code()),
			Message:     kamErr.Error(),
			Description: kamErr.Description(),
			Details:     details,
		}
	} else {
		errorDTO = &ErrorDTO{
			Code:    string(errors.ErrCodeServer),
			Message: err.Error(),
		}
	}

	return &APIResponse{
		Success:   false,
		Error:     errorDTO,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}
