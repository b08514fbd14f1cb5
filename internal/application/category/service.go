// Package category 分类管理用例
package category

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/category"
	"github.com/xiebiao/bookstore-orderengine/pkg/patch"
)

// CategoryResponse 分类响应DTO
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toResponse(c *category.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

// UseCase 分类增删改查
type UseCase struct {
	repo    category.Repository
	updater patch.Updater[category.Category]
}

// NewUseCase 创建分类用例
func NewUseCase(repo category.Repository) *UseCase {
	return &UseCase{
		repo: repo,
		updater: patch.Updater[category.Category]{
			Find:     repo.FindByID,
			Validate: (*category.Category).Validate,
			Save:     repo.Update,
		},
	}
}

// Create 新增分类，名称不能为空白
func (uc *UseCase) Create(ctx context.Context, name, description string) (*CategoryResponse, error) {
	now := time.Now()
	c := &category.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// Get 查询分类
func (uc *UseCase) Get(ctx context.Context, id string) (*CategoryResponse, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// List 全部分类
func (uc *UseCase) List(ctx context.Context) ([]*CategoryResponse, error) {
	list, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]*CategoryResponse, len(list))
	for i, c := range list {
		resp[i] = toResponse(c)
	}
	return resp, nil
}

// Update 部分更新
func (uc *UseCase) Update(ctx context.Context, id string, name, description *string) (*CategoryResponse, error) {
	c, err := uc.updater.Update(ctx, id, func(c *category.Category) error {
		patch.Set(&c.Name, name)
		patch.Set(&c.Description, description)
		c.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// Delete 删除分类
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}
