package models

import "time"

type Wallet struct {
	ID            uint64    `gorm:"primaryKey;column:id"`
	UserID        int64     `gorm:"column:user_id;not null;uniqueIndex:uk_user_type"`
	Type          string    `gorm:"column:type;type:varchar(32);not null;uniqueIndex:uk_user_type"`
	Balance       int64     `gorm:"column:balance;not null;default:0"`        // 总余额（含冻结部分）
	LockedBalance int64     `gorm:"column:locked_balance;not null;default:0"` // 冻结余额，0 <= locked <= balance
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// Available 可用余额 = 总余额 - 冻结余额
func (w *Wallet) Available() int64 {
	return w.Balance - w.LockedBalance
}
