package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"Halo/dao"
	"Halo/milestone"
	"Halo/models"
	"Halo/types"

	"github.com/DATA-DOG/go-sqlmock"
)

func newOrderService(t *testing.T, reg *milestone.Registry) (*OrderService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	cfg := testConfig()
	walletSvc := &WalletService{Config: cfg, DB: db, WalletDAO: dao.NewWallet(db)}
	milestoneSvc := &MilestoneService{Config: cfg, DB: db, Registry: reg, MilestoneDAO: dao.NewMilestone(db)}
	svc := &OrderService{
		Config:       cfg,
		DB:           db,
		OrderDAO:     dao.NewOrder(db),
		WalletSvc:    walletSvc,
		MilestoneSvc: milestoneSvc,
	}
	return svc, mock
}

func orderRows(id int, userID int64, orderSn, walletType string, totalPoints int64, status int8) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "order_sn", "wallet_type", "total_points",
		"description", "status", "completed_at", "created_at", "updated_at",
	}).AddRow(id, userID, orderSn, walletType, totalPoints, "积分兑换", status, nil, now, now)
}

// 下单 = 冻结积分 + 建单，必须同一个事务
func TestOrderCheckout(t *testing.T) {
	svc, mock := newOrderService(t, milestone.NewRegistry())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `wallets`").
		WillReturnRows(walletRows(1, 7, "regular_point", 1000, 0))
	mock.ExpectExec("UPDATE `wallets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `orders`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	resp, err := svc.Checkout(context.Background(), 7, &types.CheckoutReq{
		TotalPoints: 300,
		Description: "积分兑换",
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if resp.OrderSn == "" {
		t.Fatal("order sn should be generated")
	}
	if resp.WalletType != "regular_point" {
		t.Fatalf("expected default wallet type, got %s", resp.WalletType)
	}
	if resp.Status != int(models.OrderStatusPending) {
		t.Fatalf("new order should be pending, got %d", resp.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// 可用余额不够，单不能建出来
func TestOrderCheckout_InsufficientBalance(t *testing.T) {
	svc, mock := newOrderService(t, milestone.NewRegistry())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `wallets`").
		WillReturnRows(walletRows(1, 7, "regular_point", 100, 0))
	mock.ExpectRollback()

	_, err := svc.Checkout(context.Background(), 7, &types.CheckoutReq{TotalPoints: 300})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// 完成订单：结算冻结、落状态、评估里程碑，一个事务走完
func TestOrderComplete(t *testing.T) {
	svc, mock := newOrderService(t, milestone.NewRegistry())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `orders`").
		WillReturnRows(orderRows(1, 7, "SN123", "regular_point", 300, models.OrderStatusPending))
	mock.ExpectQuery("SELECT (.+) FROM `wallets`").
		WillReturnRows(walletRows(1, 7, "regular_point", 1000, 300))
	mock.ExpectExec("UPDATE `wallets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `wallet_histories`").
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectExec("UPDATE `orders`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := svc.Complete(context.Background(), 7, "SN123")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.OrderSn != "SN123" {
		t.Fatalf("unexpected order sn: %s", resp.OrderSn)
	}
	if resp.Milestones == nil || resp.Milestones.Trigger != TriggerPurchaseCompleted {
		t.Fatalf("milestone evaluation result missing: %+v", resp.Milestones)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderComplete_WrongStatus(t *testing.T) {
	svc, mock := newOrderService(t, milestone.NewRegistry())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `orders`").
		WillReturnRows(orderRows(1, 7, "SN123", "regular_point", 300, models.OrderStatusCompleted))
	mock.ExpectRollback()

	_, err := svc.Complete(context.Background(), 7, "SN123")
	if err == nil {
		t.Fatal("completing a completed order should fail")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// 不是自己的订单当不存在处理
func TestOrderComplete_NotOwner(t *testing.T) {
	svc, mock := newOrderService(t, milestone.NewRegistry())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `orders`").
		WillReturnRows(orderRows(1, 99, "SN123", "regular_point", 300, models.OrderStatusPending))
	mock.ExpectRollback()

	_, err := svc.Complete(context.Background(), 7, "SN123")
	if err == nil {
		t.Fatal("completing someone else's order should fail")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// 取消订单：解冻，不扣余额，不记流水
func TestOrderCancel(t *testing.T) {
	svc, mock := newOrderService(t, milestone.NewRegistry())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `orders`").
		WillReturnRows(orderRows(1, 7, "SN123", "regular_point", 300, models.OrderStatusPending))
	mock.ExpectQuery("SELECT (.+) FROM `wallets`").
		WillReturnRows(walletRows(1, 7, "regular_point", 1000, 300))
	mock.ExpectExec("UPDATE `wallets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `orders`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.Cancel(context.Background(), 7, "SN123"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetOrderList_Pagination(t *testing.T) {
	svc, mock := newOrderService(t, milestone.NewRegistry())

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "order_sn", "wallet_type", "total_points",
		"description", "status", "completed_at", "created_at", "updated_at",
	})
	now := time.Now()
	// 请求 2 条，返回 3 条说明还有下一页
	for i := 5; i >= 3; i-- {
		rows.AddRow(i, int64(7), "SN"+string(rune('0'+i)), "regular_point", int64(100), "", models.OrderStatusCompleted, nil, now, now)
	}
	mock.ExpectQuery("SELECT (.+) FROM `orders`").WillReturnRows(rows)

	resp, err := svc.GetOrderList(context.Background(), 7, 0, 2)
	if err != nil {
		t.Fatalf("GetOrderList: %v", err)
	}
	if len(resp.Orders) != 2 || !resp.HasMore {
		t.Fatalf("expected 2 orders with more, got %d hasMore=%v", len(resp.Orders), resp.HasMore)
	}
	if resp.NextCursor != 4 {
		t.Fatalf("expected next cursor 4, got %d", resp.NextCursor)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
