package errors

import (
	"errors"
	"fmt"
)

// APIError 后端返回的业务错误
type APIError struct {
	Code    int    `json:"code"`
	Key     string `json:"error"`
	Message string `json:"message"`
}

// NewAPIError 创建业务错误
func NewAPIError(code int, key string, msg string) *APIError {
	return &APIError{
		Code:    code,
		Key:     key,
		Message: msg,
	}
}

// Error makes it compatible with `error` interface.
func (e *APIError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Key, e.Message)
}

// UserMessage 用于界面提示的消息，后端未提供时返回通用提示
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "操作失败，请重试"
}

// AsAPIError 从错误链提取APIError
func AsAPIError(err error) (*APIError, bool) {
	var e *APIError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func New(msg string) error {
	return errors.New(msg)
}

func NewErrorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}
