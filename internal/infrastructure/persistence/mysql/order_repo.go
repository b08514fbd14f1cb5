package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

// orderRepository 订单仓储实现
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Save 保存订单（订单头+订单行在同一事务中）
func (r *orderRepository) Save(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	err := getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error // 关联的Items一并插入
	})
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "保存订单失败")
	}
	return nil
}

// FindByID 查询订单（含订单行）
func (r *orderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var model OrderModel
	err := r.withItems(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// FindByUserID 查询用户订单
func (r *orderRepository) FindByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	var models []OrderModel
	err := r.withItems(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error
	if err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询用户订单失败")
	}
	return toOrderEntities(models), nil
}

// FindAll 查询全部订单
func (r *orderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	var models []OrderModel
	if err := r.withItems(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询订单失败")
	}
	return toOrderEntities(models), nil
}

// UpdateStatus 条件更新：WHERE id=? AND status=from
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, from, to order.Status, at time.Time) error {
	db := getDB(ctx, r.db)
	result := db.Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{"status": string(to), "updated_at": at})
	if result.Error != nil {
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "更新订单状态失败")
	}
	if result.RowsAffected == 1 {
		return nil
	}

	// 没有更新到：订单不存在，或者状态已被其他请求修改
	var count int64
	if err := db.Model(&OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询订单失败")
	}
	if count == 0 {
		return order.ErrOrderNotFound
	}
	return order.ErrInvalidStatusTransition
}

func (r *orderRepository) withItems(ctx context.Context) *gorm.DB {
	return getDB(ctx, r.db).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	})
}

func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			OrderID:   o.ID,
			Seq:       i,
			BookID:    item.BookID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}
	return &OrderModel{
		ID:          o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toOrderEntity(m *OrderModel) *order.Order {
	items := make([]order.LineItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = order.LineItem{
			BookID:    item.BookID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}
	return &order.Order{
		ID:          m.ID,
		UserID:      m.UserID,
		Items:       items,
		TotalAmount: m.TotalAmount,
		Status:      order.Status(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toOrderEntities(models []OrderModel) []*order.Order {
	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders
}
