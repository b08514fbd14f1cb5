package order

import (
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.ErrOrderNotFound

	// ErrNoOrderHistory 用户没有任何订单
	ErrNoOrderHistory = apperrors.New(apperrors.ErrCodeOrderNotFound, "该用户暂无订单")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrUnknownStatus 未知的订单状态
	ErrUnknownStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的订单状态")

	// ErrStorage 订单持久化失败,已预占的库存已释放
	ErrStorage = apperrors.New(apperrors.ErrCodeDatabaseError, "订单保存失败,请稍后重试")
)

// ValidationError 下单请求不合法(空订单行、数量非正、用户为空)
// 在触碰任何库存之前返回
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid order request: " + e.Field + ": " + e.Reason
}

// AppError 转换为400响应,携带出错字段
func (e *ValidationError) AppError() *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeInvalidParams, e.Reason).
		WithDetails(map[string]interface{}{"field": e.Field})
}

// NewValidationError 构造校验错误
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
