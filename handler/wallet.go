package handler

import (
	"errors"

	"Halo/config"
	"Halo/middleware"
	"Halo/pkg/context"
	"Halo/pkg/response"
	"Halo/service"
	"Halo/types"

	"github.com/gin-gonic/gin"
)

type Wallet struct {
	Config    *config.Config
	WalletSvc service.IWalletService
}

func (w *Wallet) RegisterRouter(r gin.IRouter) {
	authorize := middleware.Auth([]byte(w.Config.Jwt.Secret))

	wallet := r.Group("/v1/wallet")
	wallet.GET("/balance", authorize, context.Wrap(w.Balance))
	wallet.GET("/records", authorize, context.Wrap(w.GetRecords))

	// 后台调整接口，要求管理员 token
	admin := r.Group("/v1/admin/wallet")
	admin.Use(middleware.AuthAdmin([]byte(w.Config.Jwt.Secret)))
	admin.POST("/adjust", context.Wrap(w.Adjust))
}

func (w *Wallet) Balance(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return response.NewError(401, "未登录")
	}

	resp, err := w.WalletSvc.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		return response.NewError(500, err.Error())
	}
	response.Success(c, resp)
	return nil
}

func (w *Wallet) GetRecords(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return response.NewError(401, "未登录")
	}

	var req types.ListWalletRecordsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return response.NewError(400, "参数错误: "+err.Error())
	}

	resp, err := w.WalletSvc.ListRecords(c.Request.Context(), userID, req.Type, req.Cursor, req.Limit)
	if err != nil {
		return response.NewError(500, err.Error())
	}
	response.Success(c, resp)
	return nil
}

// Adjust 后台手工调整余额
func (w *Wallet) Adjust(c *gin.Context) error {
	var req types.AdjustBalanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.NewError(400, "参数错误: "+err.Error())
	}

	wallet, history, err := w.WalletSvc.AdjustBalance(c.Request.Context(), service.AdjustParams{
		UserID:         req.UserID,
		Type:           req.Type,
		ChangeMethod:   req.ChangeMethod,
		Amount:         req.Amount,
		Reason:         req.Reason,
		SourceType:     req.SourceType,
		RequestBatchID: req.RequestBatchID,
		Meta:           req.Meta,
	})
	if err != nil {
		return walletError(err)
	}

	response.Success(c, types.AdjustBalanceResp{
		Wallet: types.WalletItem{
			Type:          wallet.Type,
			Balance:       wallet.Balance,
			LockedBalance: wallet.LockedBalance,
			Available:     wallet.Available(),
		},
		History: types.WalletRecord{
			ID:             history.ID,
			Type:           history.Type,
			ChangeMethod:   history.ChangeMethod,
			Amount:         history.PointsDelta,
			BalanceBefore:  history.BalanceBefore,
			BalanceAfter:   history.BalanceAfter,
			SourceType:     history.SourceType,
			RequestBatchID: history.RequestBatchID,
			Reason:         history.Reason,
		},
	})
	return nil
}

// walletError 台账错误翻译成对外错误码：
// 校验错 400、余额不足 409、不变量错 409，其余 500
func walletError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrUnknownChangeMethod),
		errors.Is(err, service.ErrUnknownWalletType):
		return response.NewError(400, err.Error())
	case errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrBalanceBelowLocked),
		errors.Is(err, service.ErrInsufficientLocked),
		errors.Is(err, service.ErrLockedExceedsBalance):
		return response.NewError(409, err.Error())
	default:
		return response.NewError(500, "系统异常")
	}
}
