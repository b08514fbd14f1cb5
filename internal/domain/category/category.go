// Package category 图书分类
package category

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

var (
	// ErrCategoryNotFound 分类不存在
	ErrCategoryNotFound = apperrors.New(apperrors.ErrCodeCategoryNotFound, "分类不存在")
	// ErrBlankName 分类名为空
	ErrBlankName = apperrors.New(apperrors.ErrCodeInvalidParams, "分类名称不能为空")
)

// Category 分类实体
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate 名称不能为空白
func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrBlankName
	}
	return nil
}

// Repository 分类仓储
type Repository interface {
	Create(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	FindAll(ctx context.Context) ([]*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
}
