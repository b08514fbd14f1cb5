// Package memory 内存存储
//
// 默认存储驱动，不依赖任何外部服务。返回给调用方的实体都是副本，
// 修改副本不会影响存储中的数据。
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/book"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
)

// Catalog 图书目录，同时充当库存存储
// 每本图书一把锁，不同图书的预占互不阻塞
type Catalog struct {
	entries sync.Map // id -> *bookEntry
}

type bookEntry struct {
	mu      sync.Mutex
	book    book.Book
	deleted bool
}

var (
	_ book.Repository      = (*Catalog)(nil)
	_ inventory.StockStore = (*Catalog)(nil)
)

// NewCatalog 创建空目录
func NewCatalog() *Catalog {
	return &Catalog{}
}

func (c *Catalog) entry(id string) (*bookEntry, bool) {
	v, ok := c.entries.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*bookEntry), true
}

// Create 新增图书
func (c *Catalog) Create(_ context.Context, b *book.Book) error {
	e := &bookEntry{book: copyBook(b)}
	if _, loaded := c.entries.LoadOrStore(b.ID, e); loaded {
		return errDuplicate
	}
	return nil
}

// FindByID 查询图书
func (c *Catalog) FindByID(_ context.Context, id string) (*book.Book, error) {
	e, ok := c.entry(id)
	if !ok {
		return nil, book.ErrBookNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, book.ErrBookNotFound
	}
	b := copyBook(&e.book)
	return &b, nil
}

// Update 更新描述信息和价格，库存保持不变
func (c *Catalog) Update(_ context.Context, b *book.Book) error {
	e, ok := c.entry(b.ID)
	if !ok {
		return book.ErrBookNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return book.ErrBookNotFound
	}
	stock, createdAt := e.book.Stock, e.book.CreatedAt
	e.book = copyBook(b)
	e.book.Stock = stock
	e.book.CreatedAt = createdAt
	return nil
}

// Delete 删除图书
func (c *Catalog) Delete(_ context.Context, id string) error {
	e, ok := c.entry(id)
	if !ok {
		return book.ErrBookNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return book.ErrBookNotFound
	}
	// 先标记再移除，已经拿到entry的并发请求也会看到删除
	e.deleted = true
	c.entries.Delete(id)
	return nil
}

// List 过滤、排序、分页
func (c *Catalog) List(_ context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	keyword := strings.ToLower(params.Keyword)
	var matched []*book.Book
	c.entries.Range(func(_, v interface{}) bool {
		e := v.(*bookEntry)
		e.mu.Lock()
		b := copyBook(&e.book)
		deleted := e.deleted
		e.mu.Unlock()

		if deleted {
			return true
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(b.Title), keyword) &&
			!strings.Contains(strings.ToLower(b.Author), keyword) &&
			!strings.Contains(strings.ToLower(b.Publisher), keyword) {
			return true
		}
		if params.Genre != "" && b.Genre != params.Genre {
			return true
		}
		if params.CategoryID != "" && b.CategoryID != params.CategoryID {
			return true
		}
		matched = append(matched, &b)
		return true
	})

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch params.SortBy {
		case book.SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case book.SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})

	return paginate(matched, params.Page, params.PageSize), int64(len(matched)), nil
}

// GetStock 读取库存快照
func (c *Catalog) GetStock(_ context.Context, bookID string) (*inventory.StockItem, error) {
	e, ok := c.entry(bookID)
	if !ok {
		return nil, &inventory.BookNotFoundError{BookID: bookID}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, &inventory.BookNotFoundError{BookID: bookID}
	}
	return &inventory.StockItem{
		BookID: e.book.ID,
		Title:  e.book.Title,
		Price:  e.book.Price,
		Stock:  e.book.Stock,
	}, nil
}

// CompareAndSetStock 比较并设置库存
func (c *Catalog) CompareAndSetStock(_ context.Context, bookID string, expected, next int) (bool, error) {
	e, ok := c.entry(bookID)
	if !ok {
		return false, &inventory.BookNotFoundError{BookID: bookID}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return false, &inventory.BookNotFoundError{BookID: bookID}
	}
	if e.book.Stock != expected {
		return false, nil
	}
	e.book.Stock = next
	return true, nil
}

// AddStock 增加库存
func (c *Catalog) AddStock(_ context.Context, bookID string, delta int) error {
	e, ok := c.entry(bookID)
	if !ok {
		return &inventory.BookNotFoundError{BookID: bookID}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return &inventory.BookNotFoundError{BookID: bookID}
	}
	if delta > inventory.MaxStock || e.book.Stock > inventory.MaxStock-delta {
		return inventory.ErrStockOverflow
	}
	e.book.Stock += delta
	return nil
}

// ReleaseStock 归还预占的库存
func (c *Catalog) ReleaseStock(_ context.Context, bookID string, delta int) error {
	e, ok := c.entry(bookID)
	if !ok {
		return &inventory.BookNotFoundError{BookID: bookID}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return &inventory.BookNotFoundError{BookID: bookID}
	}
	e.book.Stock += delta
	return nil
}

func copyBook(b *book.Book) book.Book {
	cp := *b
	if b.PublishedDate != nil {
		d := *b.PublishedDate
		cp.PublishedDate = &d
	}
	return cp
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
