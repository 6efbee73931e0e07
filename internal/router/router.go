package router

import (
	"github.com/MihkelJ/crowd-fund-yapp/internal/handler"
	"github.com/MihkelJ/crowd-fund-yapp/internal/logic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

const serviceName = "crowdfunding-service"

func Setup(db *gorm.DB, reconcileLogic *logic.ReconcileLogic) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(accessLogMiddleware())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 活动相关路由
		campaignHandler := handler.NewCampaignHandler(db)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.GET("/:id/contributions", campaignHandler.GetCampaignContributions)
		}

		// 贡献相关路由
		contributionHandler := handler.NewContributionHandler(db)
		v1.POST("/contributions", contributionHandler.CreateContribution)

		// 支付回调
		callbackHandler := handler.NewCallbackHandler(reconcileLogic)
		v1.POST("/callback", callbackHandler.Callback)
	}

	return r
}
