//go:build wireinject
// +build wireinject

package main

import (
	"Halo/config"
	"Halo/dao"
	"Halo/dao/cache"
	"Halo/handler"
	"Halo/pkg/client"
	"Halo/pkg/database"
	"Halo/pkg/rocketmq"
	"Halo/pkg/server"
	"Halo/service"

	"github.com/google/wire"
)

func InitServer(cfg *config.Config) *server.AppProvider {
	wire.Build(

		client.NewRedisClient,
		config.ProvideRocketMQConfig,
		rocketmq.InitProducer,
		server.NewGinEngine,
		cache.ProviderSet,

		wire.Struct(new(handler.Wallet), "*"),
		wire.Struct(new(handler.Milestone), "*"),
		wire.Struct(new(handler.Order), "*"),

		wire.Struct(new(server.AppProvider), "*"),
		wire.Struct(new(server.Handlers), "*"),

		dao.ProviderSet,
		service.ProviderSet,
		database.NewDB,
	)
	return nil
}
