package dto

import (
	"time"

	"github.com/shopspring/decimal"

	appbook "github.com/xiebiao/bookstore-orderengine/internal/application/book"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
	"github.com/xiebiao/bookstore-orderengine/pkg/money"
)

// CreateBookRequest 新增图书请求
// price为元，接受数字或字符串（"30.5"），最多两位小数
type CreateBookRequest struct {
	Title         string           `json:"title" binding:"required,notblank,max=255"`
	Author        string           `json:"author" binding:"required,notblank,max=100"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	Stock         int              `json:"stock" binding:"gte=0,lte=100000000"`
	Genre         string           `json:"genre" binding:"max=50"`
	Publisher     string           `json:"publisher" binding:"max=100"`
	Language      string           `json:"language" binding:"max=50"`
	CoverURL      string           `json:"cover_url" binding:"omitempty,url"`
	Description   string           `json:"description" binding:"max=2000"`
	PublishedDate string           `json:"published_date" binding:"omitempty,datetime=2006-01-02"`
	CategoryID    string           `json:"category_id"`
}

// ToUseCase 转换为应用层请求
func (r *CreateBookRequest) ToUseCase() (appbook.CreateBookRequest, error) {
	price, err := parsePrice(r.Price)
	if err != nil {
		return appbook.CreateBookRequest{}, err
	}
	return appbook.CreateBookRequest{
		Title:         r.Title,
		Author:        r.Author,
		Price:         price,
		Stock:         r.Stock,
		Genre:         r.Genre,
		Publisher:     r.Publisher,
		Language:      r.Language,
		CoverURL:      r.CoverURL,
		Description:   r.Description,
		PublishedDate: parseDate(r.PublishedDate),
		CategoryID:    r.CategoryID,
	}, nil
}

// UpdateBookRequest 部分更新，未出现的字段保持不变
type UpdateBookRequest struct {
	Title         *string          `json:"title" binding:"omitempty,notblank,max=255"`
	Author        *string          `json:"author" binding:"omitempty,notblank,max=100"`
	Price         *decimal.Decimal `json:"price"`
	Genre         *string          `json:"genre" binding:"omitempty,max=50"`
	Publisher     *string          `json:"publisher" binding:"omitempty,max=100"`
	Language      *string          `json:"language" binding:"omitempty,max=50"`
	CoverURL      *string          `json:"cover_url" binding:"omitempty,url"`
	Description   *string          `json:"description" binding:"omitempty,max=2000"`
	PublishedDate *string          `json:"published_date" binding:"omitempty,datetime=2006-01-02"`
	CategoryID    *string          `json:"category_id"`
}

// ToUseCase 转换为应用层请求
func (r *UpdateBookRequest) ToUseCase() (appbook.UpdateBookRequest, error) {
	req := appbook.UpdateBookRequest{
		Title:       r.Title,
		Author:      r.Author,
		Genre:       r.Genre,
		Publisher:   r.Publisher,
		Language:    r.Language,
		CoverURL:    r.CoverURL,
		Description: r.Description,
		CategoryID:  r.CategoryID,
	}
	if r.Price != nil {
		price, err := parsePrice(r.Price)
		if err != nil {
			return req, err
		}
		req.Price = &price
	}
	if r.PublishedDate != nil {
		req.PublishedDate = parseDate(*r.PublishedDate)
	}
	return req, nil
}

// ListBooksQuery 列表查询参数
type ListBooksQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Keyword    string `form:"keyword"`
	Genre      string `form:"genre"`
	CategoryID string `form:"category_id"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=price_asc price_desc created_at_desc"`
}

// RestockRequest 补货请求
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0,lte=100000000"`
}

func parsePrice(d *decimal.Decimal) (int64, error) {
	if d == nil {
		return 0, apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为空")
	}
	cents, err := money.Parse(d.String())
	if err != nil {
		return 0, apperrors.New(apperrors.ErrCodeInvalidParams, err.Error())
	}
	return cents, nil
}

// 格式已由binding校验
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &t
}
