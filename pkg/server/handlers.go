package server

import (
	"Halo/handler"
)

type Handlers struct {
	Wallet    *handler.Wallet
	Milestone *handler.Milestone
	Order     *handler.Order
}
