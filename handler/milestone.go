package handler

import (
	"Halo/config"
	"Halo/middleware"
	"Halo/pkg/context"
	"Halo/pkg/response"
	"Halo/service"

	"github.com/gin-gonic/gin"
)

type Milestone struct {
	Config       *config.Config
	MilestoneSvc service.IMilestoneService
}

func (m *Milestone) RegisterRouter(r gin.IRouter) {
	authorize := middleware.Auth([]byte(m.Config.Jwt.Secret))

	group := r.Group("/v1/milestones")
	group.GET("", context.Wrap(m.List))
	group.GET("/mine", authorize, context.Wrap(m.Mine))
}

// List 全部已注册定义
func (m *Milestone) List(c *gin.Context) error {
	response.Success(c, m.MilestoneSvc.ListDefinitions())
	return nil
}

// Mine 当前用户已达成的里程碑
func (m *Milestone) Mine(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return response.NewError(401, "未登录")
	}

	records, err := m.MilestoneSvc.ListUserMilestones(c.Request.Context(), userID)
	if err != nil {
		return response.NewError(500, "查询达成记录失败")
	}
	response.Success(c, records)
	return nil
}
