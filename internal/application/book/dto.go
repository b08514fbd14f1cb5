package book

import (
	"time"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/book"
	"github.com/xiebiao/bookstore-orderengine/pkg/money"
)

// BookResponse 图书响应DTO
type BookResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Price         int64  `json:"price"`         // 价格(分)
	PriceDisplay  string `json:"price_display"` // "30.00"
	Stock         int    `json:"stock"`
	Genre         string `json:"genre,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	Language      string `json:"language,omitempty"`
	CoverURL      string `json:"cover_url,omitempty"`
	Description   string `json:"description,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	CategoryID    string `json:"category_id,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// ToBookResponse 实体转DTO
func ToBookResponse(b *book.Book) *BookResponse {
	resp := &BookResponse{
		ID:           b.ID,
		Title:        b.Title,
		Author:       b.Author,
		Price:        b.Price,
		PriceDisplay: money.Format(b.Price),
		Stock:        b.Stock,
		Genre:        b.Genre,
		Publisher:    b.Publisher,
		Language:     b.Language,
		CoverURL:     b.CoverURL,
		Description:  b.Description,
		CategoryID:   b.CategoryID,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
	if b.PublishedDate != nil {
		resp.PublishedDate = b.PublishedDate.Format(time.DateOnly)
	}
	return resp
}
