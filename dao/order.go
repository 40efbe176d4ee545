package dao

import (
	"context"

	"Halo/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Order struct {
	Repo[models.Order]
}

func NewOrder(db *gorm.DB) *Order {
	return &Order{
		Repo: NewRepo[models.Order](db),
	}
}

func (o *Order) CreateTx(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

// GetBySnForUpdate 加锁取订单，防止并发完成/取消同一单
func (o *Order) GetBySnForUpdate(ctx context.Context, tx *gorm.DB, orderSn string) (*models.Order, error) {
	var order models.Order
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_sn = ?", orderSn).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (o *Order) UpdateStatusTx(ctx context.Context, tx *gorm.DB, orderSn string, status int8, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": status}
	for k, v := range extra {
		updates[k] = v
	}
	return tx.WithContext(ctx).Model(&models.Order{}).
		Where("order_sn = ?", orderSn).
		Updates(updates).Error
}

// ListByUser 游标分页
func (o *Order) ListByUser(ctx context.Context, userID int64, cursor int64, limit int) ([]*models.Order, error) {
	var orders []*models.Order
	query := o.Db.WithContext(ctx).Where("user_id = ?", userID)
	if cursor > 0 {
		query = query.Where("id < ?", cursor)
	}
	err := query.Order("id desc").Limit(limit).Find(&orders).Error
	return orders, err
}
