package handler

import (
	"github.com/gin-gonic/gin"

	appcategory "github.com/xiebiao/bookstore-orderengine/internal/application/category"
	"github.com/xiebiao/bookstore-orderengine/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-orderengine/pkg/response"
)

// CategoryHandler 分类HTTP处理器
type CategoryHandler struct {
	categories *appcategory.UseCase
}

// NewCategoryHandler 创建分类处理器
func NewCategoryHandler(categories *appcategory.UseCase) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CreateCategory 新增分类
// @Summary      新增分类
// @Tags         分类模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateCategoryRequest true "分类信息"
// @Success      201 {object} response.Response{data=appcategory.CategoryResponse}
// @Router       /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.categories.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListCategories 分类列表
// @Summary      分类列表
// @Tags         分类模块
// @Produce      json
// @Success      200 {object} response.Response{data=[]appcategory.CategoryResponse}
// @Router       /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	result, err := h.categories.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetCategory 分类详情
// @Summary      分类详情
// @Tags         分类模块
// @Produce      json
// @Param        id path string true "分类ID"
// @Success      200 {object} response.Response{data=appcategory.CategoryResponse}
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	result, err := h.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateCategory 修改分类
// @Summary      修改分类
// @Tags         分类模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "分类ID"
// @Param        request body dto.UpdateCategoryRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=appcategory.CategoryResponse}
// @Router       /categories/{id} [patch]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.categories.Update(c.Request.Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteCategory 删除分类
// @Summary      删除分类
// @Tags         分类模块
// @Security     BearerAuth
// @Param        id path string true "分类ID"
// @Success      204
// @Router       /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
