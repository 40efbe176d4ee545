package service

import (
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	wire.Struct(new(WalletService), "*"),
	wire.Bind(new(IWalletService), new(*WalletService)),

	wire.Struct(new(MilestoneService), "*"),
	wire.Bind(new(IMilestoneService), new(*MilestoneService)),

	wire.Struct(new(OrderService), "*"),
	wire.Bind(new(IOrderService), new(*OrderService)),

	NewMilestoneRegistry,
)
