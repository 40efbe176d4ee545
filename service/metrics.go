package service

import "github.com/prometheus/client_golang/prometheus"

var (
	// 台账操作计数，按操作和结果分维度
	walletOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "halo_wallet_operations_total",
			Help: "Total number of wallet ledger operations",
		},
		[]string{"operation", "result"},
	)

	milestonesAchievedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "halo_milestones_achieved_total",
			Help: "Total number of milestones achieved",
		},
		[]string{"key"},
	)
)

func init() {
	prometheus.MustRegister(walletOpsTotal)
	prometheus.MustRegister(milestonesAchievedTotal)
}

func observeWalletOp(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "fail"
	}
	walletOpsTotal.WithLabelValues(operation, result).Inc()
}
