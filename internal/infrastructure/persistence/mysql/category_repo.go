package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/category"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) category.Repository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *category.Category) error {
	m := &CategoryModel{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
	if err := getDB(ctx, r.db).Create(m).Error; err != nil {
		return apperrors.Wrap(err, "创建分类失败")
	}
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*category.Category, error) {
	var m CategoryModel
	if err := getDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(err, "查询分类失败")
	}
	return toCategoryEntity(&m), nil
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]*category.Category, error) {
	var models []CategoryModel
	if err := getDB(ctx, r.db).Order("name ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分类列表失败")
	}
	list := make([]*category.Category, len(models))
	for i := range models {
		list[i] = toCategoryEntity(&models[i])
	}
	return list, nil
}

func (r *categoryRepository) Update(ctx context.Context, c *category.Category) error {
	result := getDB(ctx, r.db).Model(&CategoryModel{}).
		Where("id = ?", c.ID).
		Select("name", "description", "updated_at").
		Updates(&CategoryModel{Name: c.Name, Description: c.Description, UpdatedAt: c.UpdatedAt})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新分类失败")
	}
	if result.RowsAffected == 0 {
		return category.ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	result := getDB(ctx, r.db).Where("id = ?", id).Delete(&CategoryModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除分类失败")
	}
	if result.RowsAffected == 0 {
		return category.ErrCategoryNotFound
	}
	return nil
}

func toCategoryEntity(m *CategoryModel) *category.Category {
	return &category.Category{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
