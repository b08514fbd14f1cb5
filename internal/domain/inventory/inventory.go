// Package inventory 库存预占
//
// Reserve对单本图书做"读取-校验-扣减"，这三步对同一图书的其他预占/释放是不可分割的：
// 实现方式是StockStore的CompareAndSetStock，冲突时重新读取再试。
// 不同图书之间互不阻塞，没有全局锁。
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/book"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

// Reservation 一次成功扣减的凭证，用于失败时补偿释放
type Reservation struct {
	BookID     string
	Title      string // 预占时刻的书名
	UnitPrice  int64  // 预占时刻的单价(分)
	Quantity   int
	ReservedAt time.Time
}

// StockItem 图书库存快照
type StockItem struct {
	BookID string
	Title  string
	Price  int64
	Stock  int
}

// StockStore 库存存储
//
// 图书不存在时GetStock/AddStock/ReleaseStock返回*BookNotFoundError。
type StockStore interface {
	// GetStock 读取当前库存、书名和单价
	GetStock(ctx context.Context, bookID string) (*StockItem, error)
	// CompareAndSetStock 仅当当前库存等于expected时设置为next，返回是否成功
	CompareAndSetStock(ctx context.Context, bookID string, expected, next int) (bool, error)
	// AddStock 补货，库存增加delta
	// 增加后超过MaxStock时不修改，返回ErrStockOverflow
	AddStock(ctx context.Context, bookID string, delta int) error
	// ReleaseStock 归还预占的delta，不检查上限
	// 归还后的库存不超过MaxStock加上未归还的预占量
	ReleaseStock(ctx context.Context, bookID string, delta int) error
}

// MaxStock 单本图书库存上限
const MaxStock = book.MaxStock

var (
	// ErrInvalidQuantity 数量必须为正
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
	// ErrStockOverflow 库存超过上限
	ErrStockOverflow = apperrors.New(apperrors.ErrCodeInvalidParams, "库存超过上限")
	// ErrContention CAS重试次数耗尽
	ErrContention = apperrors.New(apperrors.ErrCodeUnavailable, "库存更新冲突过多，请稍后重试")
)

// BookNotFoundError 下单的图书不存在
type BookNotFoundError struct {
	BookID string
}

func (e *BookNotFoundError) Error() string {
	return fmt.Sprintf("book %s not found", e.BookID)
}

// AppError 400，携带book_id
func (e *BookNotFoundError) AppError() *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeUnknownBook, "图书不存在").
		WithDetails(map[string]interface{}{"book_id": e.BookID})
}

// InsufficientStockError 库存不足，携带请求量和当时的可用量
type InsufficientStockError struct {
	BookID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %s: requested %d, available %d", e.BookID, e.Requested, e.Available)
}

// AppError 400，携带book_id/requested/available
func (e *InsufficientStockError) AppError() *apperrors.AppError {
	return apperrors.ErrInsufficientStock.WithDetails(map[string]interface{}{
		"book_id":   e.BookID,
		"requested": e.Requested,
		"available": e.Available,
	})
}
