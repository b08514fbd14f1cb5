package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookstore-orderengine/internal/application/order"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
	"github.com/xiebiao/bookstore-orderengine/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-orderengine/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
	"github.com/xiebiao/bookstore-orderengine/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	placeOrder   *apporder.PlaceOrderUseCase
	queryOrders  *apporder.QueryOrdersUseCase
	updateStatus *apporder.UpdateStatusUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	placeOrder *apporder.PlaceOrderUseCase,
	queryOrders *apporder.QueryOrdersUseCase,
	updateStatus *apporder.UpdateStatusUseCase,
) *OrderHandler {
	return &OrderHandler{
		placeOrder:   placeOrder,
		queryOrders:  queryOrders,
		updateStatus: updateStatus,
	}
}

// PlaceOrder 下单
// @Summary      下单
// @Description  逐行预占库存（CAS），全部成功后按下单时的价格快照计算总价并写库；任一行失败时已预占的库存全部释放
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PlaceOrderRequest true "订单信息"
// @Success      201 {object} response.Response{data=apporder.OrderResponse} "下单成功"
// @Failure      400 {object} response.Response "参数错误、库存不足或图书不存在"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "不能替其他用户下单"
// @Failure      500 {object} response.Response "订单保存失败（含存储熔断）"
// @Router       /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	// 未指定user_id时为自己下单；只含空白的user_id交给用例校验，返回400
	if req.UserID == "" {
		req.UserID = middleware.GetUserID(c)
	}
	if strings.TrimSpace(req.UserID) != "" && !middleware.CanActFor(c, req.UserID) {
		response.Error(c, apperrors.ErrForbidden)
		return
	}

	result, err := h.placeOrder.Execute(c.Request.Context(), req.ToUseCase())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListOrders 全部订单（管理员）
// @Summary      全部订单
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]apporder.OrderResponse}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	result, err := h.queryOrders.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// History 用户订单历史
// @Summary      用户订单历史
// @Description  按下单时间倒序；没有任何订单时返回404
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "用户ID"
// @Success      200 {object} response.Response{data=[]apporder.OrderResponse}
// @Failure      403 {object} response.Response "只能查看自己的订单"
// @Failure      404 {object} response.Response "暂无订单"
// @Router       /orders/history/{userId} [get]
func (h *OrderHandler) History(c *gin.Context) {
	userID := c.Param("userId")
	if !middleware.CanActFor(c, userID) {
		response.Error(c, apperrors.ErrForbidden)
		return
	}

	result, err := h.queryOrders.History(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderResponse}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	result, err := h.queryOrders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	// 别人的订单按不存在处理
	if !middleware.CanActFor(c, result.UserID) {
		response.Error(c, order.ErrOrderNotFound)
		return
	}
	response.Success(c, result)
}

// UpdateStatus 修改订单状态（管理员）
// @Summary      修改订单状态
// @Description  PENDING→PROCESSING→SHIPPED→DELIVERED，PENDING/PROCESSING可取消；取消时归还库存
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "订单ID"
// @Param        request body dto.UpdateOrderStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=apporder.OrderResponse}
// @Failure      400 {object} response.Response "非法的状态转换"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.updateStatus.Execute(c.Request.Context(), c.Param("id"), target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
