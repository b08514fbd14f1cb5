package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/category"
)

// CategoryRepository 内存分类仓储
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]category.Category
}

var _ category.Repository = (*CategoryRepository)(nil)

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[string]category.Category)}
}

func (r *CategoryRepository) Create(_ context.Context, c *category.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; ok {
		return errDuplicate
	}
	r.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepository) FindByID(_ context.Context, id string) (*category.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, category.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *CategoryRepository) FindAll(_ context.Context) ([]*category.Category, error) {
	r.mu.RLock()
	list := make([]*category.Category, 0, len(r.categories))
	for _, c := range r.categories {
		c := c
		list = append(list, &c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *CategoryRepository) Update(_ context.Context, c *category.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.categories[c.ID]
	if !ok {
		return category.ErrCategoryNotFound
	}
	cp := *c
	cp.CreatedAt = old.CreatedAt
	r.categories[c.ID] = cp
	return nil
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return category.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}
