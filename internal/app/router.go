package app

import (
	"edu_diagnosis_backend/internal/config"
	"edu_diagnosis_backend/internal/middleware"
	"edu_diagnosis_backend/internal/model"
	"edu_diagnosis_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	router.GET("/health", c.health.HealthCheck)

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerDiagnosisRoutes(authGroup, c)
		a.registerAnalyticsRoutes(authGroup, c)
		a.registerMatchRoutes(authGroup, c)
		a.registerNotificationRoutes(authGroup, c)
		a.registerQuestionRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerDiagnosisRoutes(rg *gin.RouterGroup, c *controllers) {
	diagnosis := rg.Group("/diagnosis")
	{
		diagnosis.POST("/sessions", c.diagnosis.StartSession)
		diagnosis.GET("/sessions", c.diagnosis.ListSessions)
		diagnosis.GET("/sessions/:id", c.diagnosis.GetSession)
		diagnosis.POST("/sessions/:id/answers", c.diagnosis.SubmitAnswer)
		diagnosis.POST("/sessions/:id/complete", c.diagnosis.CompleteSession)
		diagnosis.GET("/sessions/:id/result", c.diagnosis.GetResult)
		diagnosis.GET("/sessions/:id/report", c.report.Export)
	}
}

func (a *App) registerAnalyticsRoutes(rg *gin.RouterGroup, c *controllers) {
	analytics := rg.Group("/analytics")
	{
		analytics.GET("/learning-level", c.analytics.GetLearningLevel)
		analytics.GET("/recent-results", c.analytics.GetRecentResults)

		// 学部统计面向教授端
		analytics.GET("/department", middleware.RoleMiddleware(model.Professor), c.analytics.GetDepartmentStats)
	}
}

func (a *App) registerMatchRoutes(rg *gin.RouterGroup, c *controllers) {
	matches := rg.Group("/matches")
	{
		matches.POST("", c.match.RequestMatch)
		matches.GET("", c.match.List)
		matches.GET("/professors", c.match.ListProfessors)
		matches.POST("/:id/respond", middleware.RoleMiddleware(model.Professor), c.match.Respond)
		matches.DELETE("/:id", c.match.Dissolve)
	}
}

func (a *App) registerNotificationRoutes(rg *gin.RouterGroup, c *controllers) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", c.notification.List)
		notifications.POST("/:id/read", c.notification.MarkRead)
		notifications.POST("/read-all", c.notification.MarkAllRead)
		notifications.GET("/ws", c.notification.ServeWS)
	}
}

func (a *App) registerQuestionRoutes(rg *gin.RouterGroup, c *controllers) {
	questions := rg.Group("/questions")
	{
		// 学生抽题只返回脱敏视图
		questions.GET("/draw", c.question.Draw)

		// 题库维护面向教授端
		questions.POST("", middleware.RoleMiddleware(model.Professor), c.question.Create)
		questions.GET("", middleware.RoleMiddleware(model.Professor), c.question.List)
		questions.GET("/:id", middleware.RoleMiddleware(model.Professor), c.question.Get)
		questions.PUT("/:id", middleware.RoleMiddleware(model.Professor), c.question.Update)
		questions.DELETE("/:id", middleware.RoleMiddleware(model.Professor), c.question.Delete)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/diagnosis/cleanup", c.diagnosis.Cleanup)
	}
}
