package models

import (
	"time"

	"gorm.io/datatypes"
)

// 余额变动方式
const (
	ChangeMethodIncrement = "INCREMENT"
	ChangeMethodDecrement = "DECREMENT"
	ChangeMethodSet       = "SET"
)

// 常用 source_type
const (
	SourceTypePurchase        = "purchase"
	SourceTypeAdminAdjustment = "admin_adjustment"
	SourceTypeMilestoneReward = "milestone_reward"
)

// WalletHistory 余额流水。只追加不修改，构成审计链。
type WalletHistory struct {
	ID             uint64            `gorm:"primaryKey;column:id"`
	UserID         int64             `gorm:"column:user_id;index:idx_user_type"`
	Type           string            `gorm:"column:type;type:varchar(32);index:idx_user_type"`
	ChangeMethod   string            `gorm:"column:change_method;type:varchar(16);not null"`
	PointsDelta    int64             `gorm:"column:points_delta;not null"`   // 变动幅度；SET 时为目标余额
	BalanceBefore  int64             `gorm:"column:balance_before;not null"` // 变动前余额快照
	BalanceAfter   int64             `gorm:"column:balance_after;not null"`  // 变动后余额快照
	SourceType     string            `gorm:"column:source_type;type:varchar(32);not null"`
	RequestBatchID string            `gorm:"column:request_batch_id;type:varchar(64);index:idx_request_batch"`
	Reason         string            `gorm:"column:reason;type:varchar(255)"`
	Meta           datatypes.JSONMap `gorm:"column:meta"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (WalletHistory) TableName() string {
	return "wallet_histories"
}
