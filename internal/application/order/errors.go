package order

import (
	"errors"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

// storageFailure 以ErrStorage返回，保留底层原因用于日志
func storageFailure(cause error) error {
	return &apperrors.AppError{
		Code:    order.ErrStorage.Code,
		Message: order.ErrStorage.Message,
		Err:     cause,
	}
}

// failureReason 指标标签
func failureReason(err error) string {
	var (
		validation   *order.ValidationError
		notFound     *inventory.BookNotFoundError
		insufficient *inventory.InsufficientStockError
	)
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &notFound):
		return "unknown_book"
	case errors.As(err, &insufficient):
		return "insufficient_stock"
	case errors.Is(err, order.ErrStorage):
		return "storage"
	default:
		return "other"
	}
}
