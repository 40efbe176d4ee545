package models

import "time"

// 订单状态
const (
	OrderStatusPending   int8 = 10 // 待完成（积分已冻结）
	OrderStatusCompleted int8 = 20
	OrderStatusCancelled int8 = 30
)

// Order 积分订单主表
type Order struct {
	ID          int        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64      `gorm:"column:user_id;not null;index:idx_user_id" json:"user_id"`
	OrderSn     string     `gorm:"column:order_sn;type:varchar(40);not null;uniqueIndex:idx_order_sn" json:"order_sn"`
	WalletType  string     `gorm:"column:wallet_type;type:varchar(32);not null" json:"wallet_type"`
	TotalPoints int64      `gorm:"column:total_points;not null" json:"total_points"`
	Description string     `gorm:"column:description;type:varchar(255)" json:"description"`
	Status      int8       `gorm:"column:status;not null;default:10" json:"status"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
