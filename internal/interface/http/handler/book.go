package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookstore-orderengine/internal/application/book"
	"github.com/xiebiao/bookstore-orderengine/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-orderengine/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	catalog *appbook.CatalogUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(catalog *appbook.CatalogUseCase) *BookHandler {
	return &BookHandler{catalog: catalog}
}

// CreateBook 新增图书
// @Summary      新增图书
// @Description  管理员上架图书，price单位为元（最多两位小数）
// @Tags         图书模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ucReq, err := req.ToUseCase()
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.catalog.Create(c.Request.Context(), ucReq)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  支持关键字（书名/作者）、类型、分类过滤和排序
// @Tags         图书模块
// @Produce      json
// @Param        page        query int    false "页码" default(1)
// @Param        page_size   query int    false "每页数量" default(20)
// @Param        keyword     query string false "关键字"
// @Param        genre       query string false "类型"
// @Param        category_id query string false "分类ID"
// @Param        sort_by     query string false "排序" Enums(price_asc, price_desc, created_at_desc)
// @Success      200 {object} response.Response{data=response.PageData{list=[]appbook.BookResponse}}
// @Router       /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.catalog.List(c.Request.Context(), appbook.ListBooksRequest{
		Page:       q.Page,
		PageSize:   q.PageSize,
		Keyword:    q.Keyword,
		Genre:      q.Genre,
		CategoryID: q.CategoryID,
		SortBy:     q.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书模块
// @Produce      json
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	result, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateBook 修改图书
// @Summary      修改图书
// @Description  部分更新；库存只能通过补货接口或下单/取消变化
// @Tags         图书模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Param        request body dto.UpdateBookRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{id} [patch]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ucReq, err := req.ToUseCase()
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.catalog.Update(c.Request.Context(), c.Param("id"), ucReq)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Tags         图书模块
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      204
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Restock 补货
// @Summary      补货
// @Tags         图书模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Param        request body dto.RestockRequest true "补货数量"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{id}/stock [post]
func (h *BookHandler) Restock(c *gin.Context) {
	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.catalog.Restock(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
