package dao

import (
	"context"
	"errors"

	"Halo/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Wallet struct {
	Repo[models.Wallet]
}

func NewWallet(db *gorm.DB) *Wallet {
	return &Wallet{
		Repo: NewRepo[models.Wallet](db),
	}
}

// GetOrCreateForUpdate 在事务内取出钱包行并加行锁，没有就顺手建一个。
// 并发首次入账靠 (user_id, type) 唯一索引兜底：建失败就改读。
func (w *Wallet) GetOrCreateForUpdate(ctx context.Context, tx *gorm.DB, userID int64, walletType string) (*models.Wallet, error) {
	wallet := &models.Wallet{UserID: userID, Type: walletType}
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND type = ?", userID, walletType).
		FirstOrCreate(wallet).Error
	if err == nil {
		return wallet, nil
	}

	// 唯一索引冲突说明别的事务刚建完，重新加锁读即可
	var existing models.Wallet
	if err2 := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND type = ?", userID, walletType).
		First(&existing).Error; err2 == nil {
		return &existing, nil
	}
	return nil, err
}

// UpdateBalances 行已被 FOR UPDATE 锁住，直接写绝对值
func (w *Wallet) UpdateBalances(ctx context.Context, tx *gorm.DB, walletID uint64, balance, locked int64) error {
	result := tx.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Updates(map[string]interface{}{
			"balance":        balance,
			"locked_balance": locked,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("wallet row missing on update")
	}
	return nil
}

func (w *Wallet) CreateHistory(ctx context.Context, tx *gorm.DB, h *models.WalletHistory) error {
	return tx.WithContext(ctx).Create(h).Error
}

// GetWallets 一个用户名下的全部钱包
func (w *Wallet) GetWallets(ctx context.Context, userID int64) ([]models.Wallet, error) {
	var wallets []models.Wallet
	err := w.Db.WithContext(ctx).Where("user_id = ?", userID).Find(&wallets).Error
	return wallets, err
}

// ListHistories 流水游标分页
func (w *Wallet) ListHistories(ctx context.Context, userID int64, walletType string, cursor int64, limit int) ([]models.WalletHistory, error) {
	var logs []models.WalletHistory
	query := w.Db.WithContext(ctx).Where("user_id = ?", userID)

	if walletType != "" {
		query = query.Where("type = ?", walletType)
	}
	if cursor > 0 {
		query = query.Where("id < ?", cursor)
	}

	err := query.Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
