package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/book"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

// bookRepository 图书仓储实现
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储实例
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "图书已存在")
		}
		return apperrors.Wrap(err, "创建图书失败")
	}
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id string) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// Update 更新图书
// 显式列出字段，stock不在其中
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	result := getDB(ctx, r.db).Model(&BookModel{}).
		Where("id = ?", b.ID).
		Select("title", "author", "price", "genre", "publisher", "language",
			"cover_url", "description", "published_date", "category_id", "updated_at").
		Updates(&BookModel{
			Title:         b.Title,
			Author:        b.Author,
			Price:         b.Price,
			Genre:         b.Genre,
			Publisher:     b.Publisher,
			Language:      b.Language,
			CoverURL:      b.CoverURL,
			Description:   b.Description,
			PublishedDate: b.PublishedDate,
			CategoryID:    b.CategoryID,
			UpdatedAt:     b.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// Delete 软删除图书
func (r *bookRepository) Delete(ctx context.Context, id string) error {
	result := getDB(ctx, r.db).Where("id = ?", id).Delete(&BookModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	query := getDB(ctx, r.db).Model(&BookModel{})

	// 关键词搜索（标题、作者、出版社）
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR publisher LIKE ?", keyword, keyword, keyword)
	}
	if params.Genre != "" {
		query = query.Where("genre = ?", params.Genre)
	}
	if params.CategoryID != "" {
		query = query.Where("category_id = ?", params.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计图书总数失败")
	}

	switch params.SortBy {
	case book.SortPriceAsc:
		query = query.Order("price ASC")
	case book.SortPriceDesc:
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var models []BookModel
	if err := query.Offset(offset(params.Page, params.PageSize)).Limit(params.PageSize).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Price:         b.Price,
		Stock:         b.Stock,
		Genre:         b.Genre,
		Publisher:     b.Publisher,
		Language:      b.Language,
		CoverURL:      b.CoverURL,
		Description:   b.Description,
		PublishedDate: b.PublishedDate,
		CategoryID:    b.CategoryID,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:            m.ID,
		Title:         m.Title,
		Author:        m.Author,
		Price:         m.Price,
		Stock:         m.Stock,
		Genre:         m.Genre,
		Publisher:     m.Publisher,
		Language:      m.Language,
		CoverURL:      m.CoverURL,
		Description:   m.Description,
		PublishedDate: m.PublishedDate,
		CategoryID:    m.CategoryID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
