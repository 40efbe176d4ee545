package service

import (
	"context"

	"Halo/config"
	"Halo/milestone"
	"Halo/models"

	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// 触发事件名。业务流程在主效果落库之后、同一事务内触发。
const (
	TriggerPurchaseCompleted = "purchase_completed"
)

// NewMilestoneRegistry 构造注册表并注册内置定义。
// 只在启动阶段调用，key 冲突直接 panic。
func NewMilestoneRegistry(cfg *config.Config, walletSvc IWalletService) *milestone.Registry {
	r := milestone.NewRegistry()

	walletType := "regular_point"
	if cfg != nil && cfg.Wallet != nil {
		walletType = cfg.Wallet.DefaultType
	}

	// 首次完成购买。谓词恒真，只发一次靠幂等记录保证。
	r.Register(&milestone.Definition{
		Key:      "first_purchase",
		Triggers: []string{TriggerPurchaseCompleted},
		Evaluate: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (bool, error) {
			return true, nil
		},
		OnAchieved: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (map[string]interface{}, error) {
			const reward = 100
			// 奖励与触发它的订单走同一个事务
			_, history, err := walletSvc.AdjustBalanceTx(ctx, tx, AdjustParams{
				UserID:       ec.UserID,
				Type:         walletType,
				ChangeMethod: models.ChangeMethodIncrement,
				Amount:       reward,
				SourceType:   models.SourceTypeMilestoneReward,
				Reason:       "首次购买奖励",
			})
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"reward_points":    reward,
				"request_batch_id": history.RequestBatchID,
			}, nil
		},
	})

	// 单笔大额消费
	r.Register(&milestone.Definition{
		Key:      "big_spender",
		Triggers: []string{TriggerPurchaseCompleted},
		Evaluate: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (bool, error) {
			return gjson.GetBytes(ec.Payload, "total_points").Int() >= 1000, nil
		},
		OnAchieved: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (map[string]interface{}, error) {
			const reward = 300
			_, history, err := walletSvc.AdjustBalanceTx(ctx, tx, AdjustParams{
				UserID:       ec.UserID,
				Type:         walletType,
				ChangeMethod: models.ChangeMethodIncrement,
				Amount:       reward,
				SourceType:   models.SourceTypeMilestoneReward,
				Reason:       "大额消费奖励",
				Meta: map[string]interface{}{
					"order_sn": gjson.GetBytes(ec.Payload, "order_sn").String(),
				},
			})
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"reward_points":    reward,
				"request_batch_id": history.RequestBatchID,
			}, nil
		},
	})

	// 积分大户：名下余额总量达标。无奖励，只记达成。
	r.Register(&milestone.Definition{
		Key:      "point_collector",
		Triggers: []string{TriggerPurchaseCompleted},
		Evaluate: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (bool, error) {
			var total int64
			err := tx.WithContext(ctx).Model(&models.Wallet{}).
				Select("IFNULL(SUM(balance), 0)").
				Where("user_id = ?", ec.UserID).
				Scan(&total).Error
			return total >= 10000, err
		},
	})

	return r
}
