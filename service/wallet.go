package service

import (
	"context"
	"errors"
	"time"

	"Halo/config"
	"Halo/dao"
	"Halo/dao/cache"
	"Halo/models"
	"Halo/pkg/log"
	"Halo/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 校验类错误
var (
	ErrInvalidAmount       = errors.New("变动数额必须为正整数")
	ErrUnknownChangeMethod = errors.New("未知的余额变动方式")
	ErrUnknownWalletType   = errors.New("未知的积分类型")
)

// 业务类错误
var (
	ErrInsufficientBalance = errors.New("积分余额不足")
)

// 不变量类错误。正常流程不会触发，一旦出现说明调用方用错了，
// 或者别处已经把账弄脏，必须原样抛出而不是悄悄修正。
var (
	ErrBalanceBelowLocked   = errors.New("余额不能低于冻结金额")
	ErrInsufficientLocked   = errors.New("冻结金额不足")
	ErrLockedExceedsBalance = errors.New("冻结金额超过余额，账户状态异常")
)

// AdjustParams 余额调整参数
type AdjustParams struct {
	UserID         int64
	Type           string
	ChangeMethod   string // models.ChangeMethodIncrement / Decrement / Set
	Amount         int64
	Reason         string
	SourceType     string
	RequestBatchID string // 不传则自动生成
	Meta           map[string]interface{}
}

// ConsumeParams 预扣结算参数
type ConsumeParams struct {
	UserID         int64
	Type           string
	Amount         int64
	Reason         string
	SourceType     string
	RequestBatchID string
	Meta           map[string]interface{}
}

type WalletService struct {
	Config    *config.Config
	DB        *gorm.DB
	WalletDAO *dao.Wallet
	Cache     *cache.WalletStorage
}

var _ IWalletService = (*WalletService)(nil)

type IWalletService interface {
	// 四个余额操作。不带 Tx 的版本自己开事务；
	// Tx 版本加入调用方的事务，供业务流程和里程碑奖励复用。
	AdjustBalance(ctx context.Context, p AdjustParams) (*models.Wallet, *models.WalletHistory, error)
	AdjustBalanceTx(ctx context.Context, tx *gorm.DB, p AdjustParams) (*models.Wallet, *models.WalletHistory, error)
	ReserveBalance(ctx context.Context, userID int64, walletType string, amount int64) (*models.Wallet, error)
	ReserveBalanceTx(ctx context.Context, tx *gorm.DB, userID int64, walletType string, amount int64) (*models.Wallet, error)
	ConsumeReservedBalance(ctx context.Context, p ConsumeParams) (*models.Wallet, *models.WalletHistory, error)
	ConsumeReservedBalanceTx(ctx context.Context, tx *gorm.DB, p ConsumeParams) (*models.Wallet, *models.WalletHistory, error)
	ReleaseReservation(ctx context.Context, userID int64, walletType string, amount int64) (*models.Wallet, error)
	ReleaseReservationTx(ctx context.Context, tx *gorm.DB, userID int64, walletType string, amount int64) (*models.Wallet, error)

	// 查询
	GetDashboard(ctx context.Context, userID int64) (*types.WalletDashboard, error)
	ListRecords(ctx context.Context, userID int64, walletType string, cursor int64, limit int) (*types.ListWalletRecords, error)

	// FlushDashboardCache 余额变动提交后由业务流程调用
	FlushDashboardCache(ctx context.Context, userID int64)
}

func (s *WalletService) checkType(walletType string) error {
	if s.Config == nil || s.Config.Wallet == nil {
		return nil
	}
	if !s.Config.Wallet.Has(walletType) {
		return ErrUnknownWalletType
	}
	return nil
}

func (s *WalletService) AdjustBalance(ctx context.Context, p AdjustParams) (*models.Wallet, *models.WalletHistory, error) {
	var (
		wallet  *models.Wallet
		history *models.WalletHistory
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		wallet, history, err = s.AdjustBalanceTx(ctx, tx, p)
		return err
	})
	observeWalletOp("adjust", err)
	if err != nil {
		return nil, nil, err
	}
	s.FlushDashboardCache(ctx, p.UserID)
	return wallet, history, nil
}

// AdjustBalanceTx 调整余额并落一条流水，两者同生共死
func (s *WalletService) AdjustBalanceTx(ctx context.Context, tx *gorm.DB, p AdjustParams) (*models.Wallet, *models.WalletHistory, error) {
	if err := s.checkType(p.Type); err != nil {
		return nil, nil, err
	}
	switch p.ChangeMethod {
	case models.ChangeMethodIncrement, models.ChangeMethodDecrement:
		if p.Amount <= 0 {
			return nil, nil, ErrInvalidAmount
		}
	case models.ChangeMethodSet:
		// SET 允许归零
		if p.Amount < 0 {
			return nil, nil, ErrInvalidAmount
		}
	default:
		return nil, nil, ErrUnknownChangeMethod
	}

	wallet, err := s.WalletDAO.GetOrCreateForUpdate(ctx, tx, p.UserID, p.Type)
	if err != nil {
		return nil, nil, err
	}

	before := wallet.Balance
	var next int64
	switch p.ChangeMethod {
	case models.ChangeMethodIncrement:
		next = before + p.Amount
	case models.ChangeMethodDecrement:
		next = before - p.Amount
		if next < 0 {
			return nil, nil, ErrInsufficientBalance
		}
	case models.ChangeMethodSet:
		next = p.Amount
	}
	if next < wallet.LockedBalance {
		return nil, nil, ErrBalanceBelowLocked
	}

	if err = s.WalletDAO.UpdateBalances(ctx, tx, wallet.ID, next, wallet.LockedBalance); err != nil {
		return nil, nil, err
	}

	history := s.buildHistory(wallet, p.ChangeMethod, p.Amount, before, next,
		p.SourceType, p.RequestBatchID, p.Reason, p.Meta)
	if err = s.WalletDAO.CreateHistory(ctx, tx, history); err != nil {
		return nil, nil, err
	}

	wallet.Balance = next
	return wallet, history, nil
}

func (s *WalletService) ReserveBalance(ctx context.Context, userID int64, walletType string, amount int64) (*models.Wallet, error) {
	var wallet *models.Wallet
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		wallet, err = s.ReserveBalanceTx(ctx, tx, userID, walletType, amount)
		return err
	})
	observeWalletOp("reserve", err)
	if err != nil {
		return nil, err
	}
	s.FlushDashboardCache(ctx, userID)
	return wallet, nil
}

// ReserveBalanceTx 冻结一笔可用余额，balance 不动。不记流水。
func (s *WalletService) ReserveBalanceTx(ctx context.Context, tx *gorm.DB, userID int64, walletType string, amount int64) (*models.Wallet, error) {
	if err := s.checkType(walletType); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := s.WalletDAO.GetOrCreateForUpdate(ctx, tx, userID, walletType)
	if err != nil {
		return nil, err
	}
	if amount > wallet.Available() {
		return nil, ErrInsufficientBalance
	}

	next := wallet.LockedBalance + amount
	if err = s.WalletDAO.UpdateBalances(ctx, tx, wallet.ID, wallet.Balance, next); err != nil {
		return nil, err
	}
	wallet.LockedBalance = next
	return wallet, nil
}

func (s *WalletService) ConsumeReservedBalance(ctx context.Context, p ConsumeParams) (*models.Wallet, *models.WalletHistory, error) {
	var (
		wallet  *models.Wallet
		history *models.WalletHistory
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		wallet, history, err = s.ConsumeReservedBalanceTx(ctx, tx, p)
		return err
	})
	observeWalletOp("consume", err)
	if err != nil {
		return nil, nil, err
	}
	s.FlushDashboardCache(ctx, p.UserID)
	return wallet, history, nil
}

// ConsumeReservedBalanceTx 结算一笔冻结：balance 和 locked 同减，记 DECREMENT 流水。
func (s *WalletService) ConsumeReservedBalanceTx(ctx context.Context, tx *gorm.DB, p ConsumeParams) (*models.Wallet, *models.WalletHistory, error) {
	if err := s.checkType(p.Type); err != nil {
		return nil, nil, err
	}
	if p.Amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	wallet, err := s.WalletDAO.GetOrCreateForUpdate(ctx, tx, p.UserID, p.Type)
	if err != nil {
		return nil, nil, err
	}
	if p.Amount > wallet.LockedBalance {
		return nil, nil, ErrInsufficientLocked
	}
	// 冻结只会发生在可用余额之内，这里按理不可能不够。
	// 真不够说明账已经脏了，单独报出来。
	if p.Amount > wallet.Balance {
		return nil, nil, ErrLockedExceedsBalance
	}

	before := wallet.Balance
	nextBalance := wallet.Balance - p.Amount
	nextLocked := wallet.LockedBalance - p.Amount
	if err = s.WalletDAO.UpdateBalances(ctx, tx, wallet.ID, nextBalance, nextLocked); err != nil {
		return nil, nil, err
	}

	history := s.buildHistory(wallet, models.ChangeMethodDecrement, p.Amount, before, nextBalance,
		p.SourceType, p.RequestBatchID, p.Reason, p.Meta)
	if err = s.WalletDAO.CreateHistory(ctx, tx, history); err != nil {
		return nil, nil, err
	}

	wallet.Balance = nextBalance
	wallet.LockedBalance = nextLocked
	return wallet, history, nil
}

func (s *WalletService) ReleaseReservation(ctx context.Context, userID int64, walletType string, amount int64) (*models.Wallet, error) {
	var wallet *models.Wallet
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		wallet, err = s.ReleaseReservationTx(ctx, tx, userID, walletType, amount)
		return err
	})
	observeWalletOp("release", err)
	if err != nil {
		return nil, err
	}
	s.FlushDashboardCache(ctx, userID)
	return wallet, nil
}

// ReleaseReservationTx 解冻，资金回到可用。balance 不变所以不记流水。
func (s *WalletService) ReleaseReservationTx(ctx context.Context, tx *gorm.DB, userID int64, walletType string, amount int64) (*models.Wallet, error) {
	if err := s.checkType(walletType); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := s.WalletDAO.GetOrCreateForUpdate(ctx, tx, userID, walletType)
	if err != nil {
		return nil, err
	}
	if amount > wallet.LockedBalance {
		return nil, ErrInsufficientLocked
	}

	next := wallet.LockedBalance - amount
	if err = s.WalletDAO.UpdateBalances(ctx, tx, wallet.ID, wallet.Balance, next); err != nil {
		return nil, err
	}
	wallet.LockedBalance = next
	return wallet, nil
}

func (s *WalletService) buildHistory(w *models.Wallet, method string, amount, before, after int64,
	sourceType, batchID, reason string, meta map[string]interface{}) *models.WalletHistory {

	if batchID == "" {
		batchID = uuid.NewString()
	}
	history := &models.WalletHistory{
		UserID:         w.UserID,
		Type:           w.Type,
		ChangeMethod:   method,
		PointsDelta:    amount,
		BalanceBefore:  before,
		BalanceAfter:   after,
		SourceType:     sourceType,
		RequestBatchID: batchID,
		Reason:         reason,
	}
	if meta != nil {
		history.Meta = datatypes.JSONMap(meta)
	}
	return history
}

func (s *WalletService) GetDashboard(ctx context.Context, userID int64) (*types.WalletDashboard, error) {
	resp := &types.WalletDashboard{}
	if s.Cache != nil && s.Cache.Get(ctx, userID, resp) {
		return resp, nil
	}

	wallets, err := s.WalletDAO.GetWallets(ctx, userID)
	if err != nil {
		return nil, errors.New("查询钱包失败")
	}

	resp.Wallets = make([]types.WalletItem, 0, len(wallets))
	for _, w := range wallets {
		resp.Wallets = append(resp.Wallets, types.WalletItem{
			Type:          w.Type,
			Balance:       w.Balance,
			LockedBalance: w.LockedBalance,
			Available:     w.Available(),
		})
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, userID, resp, time.Minute); err != nil {
			log.L.Warn("set wallet dashboard cache failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return resp, nil
}

func (s *WalletService) ListRecords(ctx context.Context, userID int64, walletType string, cursor int64, limit int) (*types.ListWalletRecords, error) {
	if limit <= 0 {
		limit = 10
	}
	logs, err := s.WalletDAO.ListHistories(ctx, userID, walletType, cursor, limit+1)
	if err != nil {
		return nil, errors.New("查询积分流水失败")
	}

	resp := &types.ListWalletRecords{
		Records: make([]types.WalletRecord, 0),
		HasMore: false,
	}

	if len(logs) > limit {
		resp.HasMore = true
		logs = logs[:limit]
		resp.NextCursor = int64(logs[len(logs)-1].ID)
	}

	for _, l := range logs {
		delta := l.PointsDelta
		if l.ChangeMethod == models.ChangeMethodDecrement {
			delta = -delta
		}
		resp.Records = append(resp.Records, types.WalletRecord{
			ID:             l.ID,
			Type:           l.Type,
			ChangeMethod:   l.ChangeMethod,
			Amount:         delta,
			BalanceBefore:  l.BalanceBefore,
			BalanceAfter:   l.BalanceAfter,
			SourceType:     l.SourceType,
			RequestBatchID: l.RequestBatchID,
			Reason:         l.Reason,
			Meta:           map[string]interface{}(l.Meta),
			CreatedAt:      l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return resp, nil
}

func (s *WalletService) FlushDashboardCache(ctx context.Context, userID int64) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, userID); err != nil {
		log.L.Warn("flush wallet dashboard cache failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
