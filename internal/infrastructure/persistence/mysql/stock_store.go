package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

// stockStore 基于books.stock列的库存存储
// CAS用带条件的UPDATE实现，不需要SELECT ... FOR UPDATE
type stockStore struct {
	db *gorm.DB
}

// NewStockStore 创建库存存储
func NewStockStore(db *gorm.DB) inventory.StockStore {
	return &stockStore{db: db}
}

func (s *stockStore) GetStock(ctx context.Context, bookID string) (*inventory.StockItem, error) {
	var model BookModel
	err := getDB(ctx, s.db).
		Select("id", "title", "price", "stock").
		Where("id = ?", bookID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &inventory.BookNotFoundError{BookID: bookID}
		}
		return nil, apperrors.Wrap(err, "查询库存失败")
	}
	return &inventory.StockItem{
		BookID: model.ID,
		Title:  model.Title,
		Price:  model.Price,
		Stock:  model.Stock,
	}, nil
}

// CompareAndSetStock UPDATE books SET stock=next WHERE id=? AND stock=expected
func (s *stockStore) CompareAndSetStock(ctx context.Context, bookID string, expected, next int) (bool, error) {
	result := getDB(ctx, s.db).Model(&BookModel{}).
		Where("id = ? AND stock = ?", bookID, expected).
		Update("stock", next)
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "更新库存失败")
	}
	return result.RowsAffected == 1, nil
}

// AddStock stock = stock + delta，带上限条件
func (s *stockStore) AddStock(ctx context.Context, bookID string, delta int) error {
	if delta > inventory.MaxStock {
		return inventory.ErrStockOverflow
	}
	db := getDB(ctx, s.db)
	result := db.Model(&BookModel{}).
		Where("id = ? AND stock <= ?", bookID, inventory.MaxStock-delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "增加库存失败")
	}
	if result.RowsAffected == 1 {
		return nil
	}

	// 没有更新到行：图书不存在或超过上限
	var count int64
	if err := db.Model(&BookModel{}).Where("id = ?", bookID).Count(&count).Error; err != nil {
		return apperrors.Wrap(err, "查询库存失败")
	}
	if count == 0 {
		return &inventory.BookNotFoundError{BookID: bookID}
	}
	return inventory.ErrStockOverflow
}

// ReleaseStock stock = stock + delta，不检查上限
func (s *stockStore) ReleaseStock(ctx context.Context, bookID string, delta int) error {
	result := getDB(ctx, s.db).Model(&BookModel{}).
		Where("id = ?", bookID).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "归还库存失败")
	}
	if result.RowsAffected == 0 {
		return &inventory.BookNotFoundError{BookID: bookID}
	}
	return nil
}
