package types

// CheckoutReq 下单请求
type CheckoutReq struct {
	WalletType  string `json:"wallet_type"`
	TotalPoints int64  `json:"total_points" binding:"required,gt=0"`
	Description string `json:"description"`
}

type OrderResp struct {
	OrderSn     string `json:"order_sn"`
	WalletType  string `json:"wallet_type"`
	TotalPoints int64  `json:"total_points"`
	Status      int    `json:"status"`
}

// CompleteOrderResp 完成订单的返回，附带本次触发的里程碑评估结果
type CompleteOrderResp struct {
	OrderSn    string                    `json:"order_sn"`
	Milestones *EvaluateMilestonesResult `json:"milestones"`
}

type OrderItem struct {
	OrderSn     string `json:"order_sn"`
	WalletType  string `json:"wallet_type"`
	TotalPoints int64  `json:"total_points"`
	Description string `json:"description"`
	Status      int    `json:"status"`
	CreatedAt   string `json:"created_at"`
}

type ListOrders struct {
	Orders     []OrderItem `json:"orders"`
	NextCursor int64       `json:"next_cursor"`
	HasMore    bool        `json:"has_more"`
}
