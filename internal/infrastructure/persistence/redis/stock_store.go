package redis

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/book"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

//go:embed compare_and_set.lua
var compareAndSetLua string

//go:embed add_stock.lua
var addStockLua string

var (
	compareAndSetScript = redis.NewScript(compareAndSetLua)
	addStockScript      = redis.NewScript(addStockLua)
)

// StockStore Redis库存存储
//
// 库存保存在stock:{book_id}，书名和单价仍以图书仓储为准。
// Key不存在时用图书仓储中的库存做初值(SETNX)，之后Redis是库存的唯一来源。
type StockStore struct {
	client *redis.Client
	books  book.Repository
}

var _ inventory.StockStore = (*StockStore)(nil)

// NewStockStore 创建Redis库存存储
func NewStockStore(client *redis.Client, books book.Repository) *StockStore {
	return &StockStore{client: client, books: books}
}

// GetStock 读取库存
func (s *StockStore) GetStock(ctx context.Context, bookID string) (*inventory.StockItem, error) {
	b, err := s.seed(ctx, bookID)
	if err != nil {
		return nil, err
	}
	val, err := s.client.Get(ctx, stockKey(bookID)).Result()
	if err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "获取库存失败")
	}
	stock, err := strconv.Atoi(val)
	if err != nil {
		return nil, fmt.Errorf("解析库存失败[%s=%q]: %w", stockKey(bookID), val, err)
	}
	return &inventory.StockItem{
		BookID: b.ID,
		Title:  b.Title,
		Price:  b.Price,
		Stock:  stock,
	}, nil
}

// CompareAndSetStock 在Lua脚本中比较并设置，Redis单线程执行脚本保证原子性
func (s *StockStore) CompareAndSetStock(ctx context.Context, bookID string, expected, next int) (bool, error) {
	code, err := compareAndSetScript.Run(ctx, s.client, []string{stockKey(bookID)}, expected, next).Int()
	if err != nil {
		return false, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "执行库存CAS脚本失败")
	}
	switch code {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, &inventory.BookNotFoundError{BookID: bookID}
	}
}

// AddStock 增加库存
func (s *StockStore) AddStock(ctx context.Context, bookID string, delta int) error {
	if _, err := s.seed(ctx, bookID); err != nil {
		return err
	}
	if delta > inventory.MaxStock {
		return inventory.ErrStockOverflow
	}
	n, err := addStockScript.Run(ctx, s.client, []string{stockKey(bookID)}, delta, inventory.MaxStock).Int()
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "执行加库存脚本失败")
	}
	switch n {
	case -1:
		return &inventory.BookNotFoundError{BookID: bookID}
	case -2:
		return inventory.ErrStockOverflow
	}
	return nil
}

// ReleaseStock 归还预占的库存
// 上限传0表示不检查
func (s *StockStore) ReleaseStock(ctx context.Context, bookID string, delta int) error {
	n, err := addStockScript.Run(ctx, s.client, []string{stockKey(bookID)}, delta, 0).Int()
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "执行归还库存脚本失败")
	}
	if n == -1 {
		return &inventory.BookNotFoundError{BookID: bookID}
	}
	return nil
}

// seed 确认图书存在，并在首次访问时初始化库存Key
func (s *StockStore) seed(ctx context.Context, bookID string) (*book.Book, error) {
	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, book.ErrBookNotFound) {
			return nil, &inventory.BookNotFoundError{BookID: bookID}
		}
		return nil, err
	}
	if err := s.client.SetNX(ctx, stockKey(bookID), b.Stock, 0).Err(); err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "初始化库存失败")
	}
	return b, nil
}

// Forget 删除图书时清理库存Key
func (s *StockStore) Forget(ctx context.Context, bookID string) error {
	if err := s.client.Del(ctx, stockKey(bookID)).Err(); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "删除库存失败")
	}
	return nil
}

func stockKey(bookID string) string {
	return fmt.Sprintf("stock:%s", bookID)
}
