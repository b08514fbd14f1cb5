// Package book 图书目录管理用例
package book

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/book"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/category"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	"github.com/xiebiao/bookstore-orderengine/pkg/patch"
)

// StockKeeper 库存读取与补货（由inventory.Service实现）
type StockKeeper interface {
	Available(ctx context.Context, bookID string) (int, error)
	Restock(ctx context.Context, bookID string, quantity int) error
}

// stockForgetter 独立的库存存储在删除图书时清理
type stockForgetter interface {
	Forget(ctx context.Context, bookID string) error
}

// CatalogUseCase 图书目录用例
// 库存以StockKeeper为准，图书仓储里的stock只是创建时的初值
type CatalogUseCase struct {
	books      book.Repository
	categories category.Repository
	stock      StockKeeper
	forgetter  stockForgetter
	updater    patch.Updater[book.Book]
	now        func() time.Time
}

// NewCatalogUseCase 创建图书目录用例
// stockStore实现了Forget时，删除图书会一并清理库存记录
func NewCatalogUseCase(books book.Repository, categories category.Repository, stock StockKeeper, stockStore inventory.StockStore) *CatalogUseCase {
	uc := &CatalogUseCase{
		books:      books,
		categories: categories,
		stock:      stock,
		now:        time.Now,
	}
	if f, ok := stockStore.(stockForgetter); ok {
		uc.forgetter = f
	}
	uc.updater = patch.Updater[book.Book]{
		Find:     books.FindByID,
		Validate: func(b *book.Book) error { return b.Validate() },
		Save:     books.Update,
	}
	return uc
}

// CreateBookRequest 新增图书
type CreateBookRequest struct {
	Title         string
	Author        string
	Price         int64 // 分
	Stock         int
	Genre         string
	Publisher     string
	Language      string
	CoverURL      string
	Description   string
	PublishedDate *time.Time
	CategoryID    string
}

// Create 新增图书，价格必须>0，库存>=0
func (uc *CatalogUseCase) Create(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	now := uc.now()
	b := &book.Book{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(req.Title),
		Author:        strings.TrimSpace(req.Author),
		Price:         req.Price,
		Stock:         req.Stock,
		Genre:         req.Genre,
		Publisher:     req.Publisher,
		Language:      req.Language,
		CoverURL:      req.CoverURL,
		Description:   req.Description,
		PublishedDate: req.PublishedDate,
		CategoryID:    req.CategoryID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := uc.checkCategory(ctx, b.CategoryID); err != nil {
		return nil, err
	}
	if err := uc.books.Create(ctx, b); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"book_id": b.ID, "stock": b.Stock}).Info("新增图书")
	return ToBookResponse(b), nil
}

// Get 查询图书详情
func (uc *CatalogUseCase) Get(ctx context.Context, id string) (*BookResponse, error) {
	b, err := uc.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.overlayStock(ctx, b); err != nil {
		return nil, err
	}
	return ToBookResponse(b), nil
}

// ListBooksRequest 列表查询
type ListBooksRequest struct {
	Page       int
	PageSize   int
	Keyword    string
	Genre      string
	CategoryID string
	SortBy     string
}

// ListBooksResponse 列表结果
type ListBooksResponse struct {
	List     []*BookResponse
	Total    int64
	Page     int
	PageSize int
}

// List 分页查询，page默认1，pageSize默认20、最大100
func (uc *CatalogUseCase) List(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	books, total, err := uc.books.List(ctx, book.ListParams{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Keyword:    strings.TrimSpace(req.Keyword),
		Genre:      req.Genre,
		CategoryID: req.CategoryID,
		SortBy:     req.SortBy,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*BookResponse, len(books))
	for i, b := range books {
		if err := uc.overlayStock(ctx, b); err != nil {
			return nil, err
		}
		list[i] = ToBookResponse(b)
	}
	return &ListBooksResponse{List: list, Total: total, Page: req.Page, PageSize: req.PageSize}, nil
}

// UpdateBookRequest 部分更新，nil字段保持不变；库存不能在这里修改
type UpdateBookRequest struct {
	Title         *string
	Author        *string
	Price         *int64
	Genre         *string
	Publisher     *string
	Language      *string
	CoverURL      *string
	Description   *string
	PublishedDate *time.Time
	CategoryID    *string
}

// Update 部分更新图书
func (uc *CatalogUseCase) Update(ctx context.Context, id string, req UpdateBookRequest) (*BookResponse, error) {
	if req.CategoryID != nil {
		if err := uc.checkCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	b, err := uc.updater.Update(ctx, id, func(b *book.Book) error {
		patch.Set(&b.Title, req.Title)
		patch.Set(&b.Author, req.Author)
		patch.Set(&b.Price, req.Price)
		patch.Set(&b.Genre, req.Genre)
		patch.Set(&b.Publisher, req.Publisher)
		patch.Set(&b.Language, req.Language)
		patch.Set(&b.CoverURL, req.CoverURL)
		patch.Set(&b.Description, req.Description)
		patch.Set(&b.CategoryID, req.CategoryID)
		if req.PublishedDate != nil {
			d := *req.PublishedDate
			b.PublishedDate = &d
		}
		b.Title = strings.TrimSpace(b.Title)
		b.Author = strings.TrimSpace(b.Author)
		b.UpdatedAt = uc.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := uc.overlayStock(ctx, b); err != nil {
		return nil, err
	}
	return ToBookResponse(b), nil
}

// Delete 删除图书，已有订单中的快照不受影响
func (uc *CatalogUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.books.Delete(ctx, id); err != nil {
		return err
	}
	if uc.forgetter != nil {
		if err := uc.forgetter.Forget(ctx, id); err != nil {
			log.WithError(err).WithField("book_id", id).Warn("清理库存记录失败")
		}
	}
	return nil
}

// Restock 补货，返回补货后的图书
func (uc *CatalogUseCase) Restock(ctx context.Context, id string, quantity int) (*BookResponse, error) {
	if err := uc.stock.Restock(ctx, id, quantity); err != nil {
		return nil, mapNotFound(err)
	}
	log.WithFields(log.Fields{"book_id": id, "quantity": quantity}).Info("图书补货")
	return uc.Get(ctx, id)
}

func (uc *CatalogUseCase) overlayStock(ctx context.Context, b *book.Book) error {
	n, err := uc.stock.Available(ctx, b.ID)
	if err != nil {
		return mapNotFound(err)
	}
	b.Stock = n
	return nil
}

func (uc *CatalogUseCase) checkCategory(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	_, err := uc.categories.FindByID(ctx, id)
	return err
}

// mapNotFound 目录接口里的"图书不存在"是404，不是下单时的400
func mapNotFound(err error) error {
	var nf *inventory.BookNotFoundError
	if errors.As(err, &nf) {
		return book.ErrBookNotFound
	}
	return err
}
