package handler

import (
	"errors"
	"strconv"

	"Halo/config"
	"Halo/middleware"
	"Halo/pkg/context"
	"Halo/pkg/response"
	"Halo/service"
	"Halo/types"

	"github.com/gin-gonic/gin"
)

type Order struct {
	Config   *config.Config
	OrderSvc service.IOrderService
}

func (o *Order) RegisterRouter(r gin.IRouter) {
	authorize := middleware.Auth([]byte(o.Config.Jwt.Secret))

	order := r.Group("/v1/orders")
	order.Use(authorize)
	order.GET("/list", context.Wrap(o.List))
	order.POST("/checkout", context.Wrap(o.Checkout))
	order.POST("/:order_sn/complete", context.Wrap(o.Complete))
	order.POST("/:order_sn/cancel", context.Wrap(o.Cancel))
}

func (o *Order) List(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return response.NewError(401, "未登录")
	}

	cursor, _ := strconv.ParseInt(c.Query("cursor"), 10, 64)
	resp, err := o.OrderSvc.GetOrderList(c.Request.Context(), userID, cursor, 10)
	if err != nil {
		return response.NewError(500, err.Error())
	}
	response.Success(c, resp)
	return nil
}

// Checkout 下单并冻结积分
func (o *Order) Checkout(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return response.NewError(401, "未登录")
	}

	var req types.CheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.NewError(400, "参数错误: "+err.Error())
	}

	resp, err := o.OrderSvc.Checkout(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientBalance) {
			return response.NewError(409, err.Error())
		}
		return response.NewError(500, err.Error())
	}
	response.Success(c, resp)
	return nil
}

// Complete 完成订单，结算冻结积分并评估里程碑
func (o *Order) Complete(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return response.NewError(401, "未登录")
	}

	resp, err := o.OrderSvc.Complete(c.Request.Context(), userID, c.Param("order_sn"))
	if err != nil {
		return response.NewError(400, err.Error())
	}
	response.Success(c, resp)
	return nil
}

// Cancel 取消订单，解冻积分
func (o *Order) Cancel(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return response.NewError(401, "未登录")
	}

	if err := o.OrderSvc.Cancel(c.Request.Context(), userID, c.Param("order_sn")); err != nil {
		return response.NewError(400, err.Error())
	}
	response.Success(c, nil)
	return nil
}
