package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现(MySQL/内存)
// 2. Update不写stock字段,库存只能经inventory.StockStore修改
type Repository interface {
	// Create 创建图书(含初始库存)
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书,不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id string) (*Book, error)

	// Update 更新图书描述信息与价格
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书,不存在返回ErrBookNotFound
	Delete(ctx context.Context, id string) error

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page       int    // 页码(从1开始)
	PageSize   int    // 每页数量
	Keyword    string // 搜索关键词(标题、作者、出版社)
	Genre      string
	CategoryID string
	SortBy     string // price_asc, price_desc, created_at_desc(默认)
}

// 排序方式
const (
	SortPriceAsc      = "price_asc"
	SortPriceDesc     = "price_desc"
	SortCreatedAtDesc = "created_at_desc"
)
