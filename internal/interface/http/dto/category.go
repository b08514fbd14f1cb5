package dto

// CreateCategoryRequest 新增分类
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=50"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateCategoryRequest 修改分类
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=50"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}
