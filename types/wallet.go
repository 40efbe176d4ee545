package types

// WalletItem 单个钱包概览
type WalletItem struct {
	Type          string `json:"type"`
	Balance       int64  `json:"balance"`        // 总余额
	LockedBalance int64  `json:"locked_balance"` // 冻结部分
	Available     int64  `json:"available"`      // 可花的部分
}

// WalletDashboard 用户全部钱包概览
type WalletDashboard struct {
	Wallets []WalletItem `json:"wallets"`
}

// WalletRecord 一条流水
type WalletRecord struct {
	ID             uint64                 `json:"id"`
	Type           string                 `json:"type"`
	ChangeMethod   string                 `json:"change_method"`
	Amount         int64                  `json:"amount"` // 带符号：入账为正、支出为负
	BalanceBefore  int64                  `json:"balance_before"`
	BalanceAfter   int64                  `json:"balance_after"`
	SourceType     string                 `json:"source_type"`
	RequestBatchID string                 `json:"request_batch_id"`
	Reason         string                 `json:"reason"`
	Meta           map[string]interface{} `json:"meta,omitempty"`
	CreatedAt      string                 `json:"created_at"`
}

// ListWalletRecords 流水列表
type ListWalletRecords struct {
	Records    []WalletRecord `json:"records"`
	NextCursor int64          `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

// ListWalletRecordsReq 流水查询参数
type ListWalletRecordsReq struct {
	Type   string `form:"type"`
	Cursor int64  `form:"cursor"`
	Limit  int    `form:"limit,default=10"`
}

// AdjustBalanceReq 后台余额调整请求
type AdjustBalanceReq struct {
	UserID         int64                  `json:"user_id" binding:"required"`
	Type           string                 `json:"type" binding:"required"`
	ChangeMethod   string                 `json:"change_method" binding:"required,oneof=INCREMENT DECREMENT SET"`
	Amount         int64                  `json:"amount" binding:"gte=0"`
	Reason         string                 `json:"reason"`
	SourceType     string                 `json:"source_type" binding:"required"`
	RequestBatchID string                 `json:"request_batch_id"`
	Meta           map[string]interface{} `json:"meta"`
}

// AdjustBalanceResp 返回更新后的钱包和生成的流水
type AdjustBalanceResp struct {
	Wallet  WalletItem   `json:"wallet"`
	History WalletRecord `json:"history"`
}
