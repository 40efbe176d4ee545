package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"Halo/config"
	"Halo/dao"
	"Halo/milestone"
	"Halo/models"
	"Halo/pkg/utils"
	"Halo/types"

	"gorm.io/gorm"
)

type OrderService struct {
	Config       *config.Config
	DB           *gorm.DB
	OrderDAO     *dao.Order
	WalletSvc    IWalletService
	MilestoneSvc IMilestoneService
}

var _ IOrderService = (*OrderService)(nil)

type IOrderService interface {
	Checkout(ctx context.Context, userID int64, req *types.CheckoutReq) (*types.OrderResp, error)
	Complete(ctx context.Context, userID int64, orderSn string) (*types.CompleteOrderResp, error)
	Cancel(ctx context.Context, userID int64, orderSn string) error
	GetOrderList(ctx context.Context, userID int64, cursor int64, pageSize int) (*types.ListOrders, error)
}

// Checkout 下单：冻结积分 + 建单，一个事务
func (s *OrderService) Checkout(ctx context.Context, userID int64, req *types.CheckoutReq) (*types.OrderResp, error) {
	walletType := req.WalletType
	if walletType == "" {
		walletType = s.Config.Wallet.DefaultType
	}

	order := &models.Order{
		UserID:      userID,
		OrderSn:     utils.GenerateOrderSn(userID),
		WalletType:  walletType,
		TotalPoints: req.TotalPoints,
		Description: req.Description,
		Status:      models.OrderStatusPending,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.WalletSvc.ReserveBalanceTx(ctx, tx, userID, walletType, req.TotalPoints); err != nil {
			return err
		}
		return s.OrderDAO.CreateTx(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	s.WalletSvc.FlushDashboardCache(ctx, userID)

	return &types.OrderResp{
		OrderSn:     order.OrderSn,
		WalletType:  order.WalletType,
		TotalPoints: order.TotalPoints,
		Status:      int(order.Status),
	}, nil
}

// Complete 完成订单：结算冻结积分、落订单状态、评估里程碑，全部在一个事务里。
// 里程碑奖励如果给用户加了积分，也在这个事务内生效。
func (s *OrderService) Complete(ctx context.Context, userID int64, orderSn string) (*types.CompleteOrderResp, error) {
	var milestones *types.EvaluateMilestonesResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.OrderDAO.GetBySnForUpdate(ctx, tx, orderSn)
		if err != nil {
			return errors.New("订单不存在")
		}
		if order.UserID != userID {
			return errors.New("订单不存在")
		}
		if order.Status != models.OrderStatusPending {
			return errors.New("订单状态不允许完成")
		}

		if _, _, err = s.WalletSvc.ConsumeReservedBalanceTx(ctx, tx, ConsumeParams{
			UserID:     userID,
			Type:       order.WalletType,
			Amount:     order.TotalPoints,
			Reason:     order.Description,
			SourceType: models.SourceTypePurchase,
			Meta:       map[string]interface{}{"order_sn": orderSn},
		}); err != nil {
			return err
		}

		now := time.Now()
		if err = s.OrderDAO.UpdateStatusTx(ctx, tx, orderSn, models.OrderStatusCompleted,
			map[string]interface{}{"completed_at": now}); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"order_sn":     orderSn,
			"wallet_type":  order.WalletType,
			"total_points": order.TotalPoints,
		})
		milestones = s.MilestoneSvc.EvaluateMilestones(ctx, TriggerPurchaseCompleted,
			&milestone.EvalContext{UserID: userID, Payload: payload}, tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.WalletSvc.FlushDashboardCache(ctx, userID)

	return &types.CompleteOrderResp{
		OrderSn:    orderSn,
		Milestones: milestones,
	}, nil
}

// Cancel 取消订单：解冻积分，不动 balance
func (s *OrderService) Cancel(ctx context.Context, userID int64, orderSn string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.OrderDAO.GetBySnForUpdate(ctx, tx, orderSn)
		if err != nil || order.UserID != userID {
			return errors.New("订单不存在")
		}
		if order.Status != models.OrderStatusPending {
			return errors.New("订单状态不允许取消")
		}

		if _, err = s.WalletSvc.ReleaseReservationTx(ctx, tx, userID, order.WalletType, order.TotalPoints); err != nil {
			return err
		}
		return s.OrderDAO.UpdateStatusTx(ctx, tx, orderSn, models.OrderStatusCancelled, nil)
	})
	if err != nil {
		return err
	}
	s.WalletSvc.FlushDashboardCache(ctx, userID)
	return nil
}

func (s *OrderService) GetOrderList(ctx context.Context, userID int64, cursor int64, pageSize int) (*types.ListOrders, error) {
	if pageSize <= 0 {
		pageSize = 10
	}

	orders, err := s.OrderDAO.ListByUser(ctx, userID, cursor, pageSize+1)
	if err != nil {
		return nil, errors.New("查询订单失败")
	}

	resp := &types.ListOrders{
		Orders:  make([]types.OrderItem, 0),
		HasMore: false,
	}
	if len(orders) > pageSize {
		resp.HasMore = true
		orders = orders[:pageSize]
		resp.NextCursor = int64(orders[len(orders)-1].ID)
	}

	for _, o := range orders {
		resp.Orders = append(resp.Orders, types.OrderItem{
			OrderSn:     o.OrderSn,
			WalletType:  o.WalletType,
			TotalPoints: o.TotalPoints,
			Description: o.Description,
			Status:      int(o.Status),
			CreatedAt:   o.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return resp, nil
}
