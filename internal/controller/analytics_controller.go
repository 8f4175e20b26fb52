package controller

import (
	"strconv"

	"edu_diagnosis_backend/internal/service"
	"edu_diagnosis_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Service *service.AnalyticsService
}

func NewAnalyticsController(svc *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Service: svc}
}

// @Summary 学习水平历史与趋势
// @Tags 学情分析
// @Produce json
// @Security BearerAuth
// @Param department query string true "学科"
// @Param windowDays query int false "趋势窗口（天），默认30"
// @Param horizonDays query int false "外推天数，默认7"
// @Success 200 {object} util.Response
// @Router /api/analytics/learning-level [get]
func (c *AnalyticsController) GetLearningLevel(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	department := ctx.Query("department")
	if department == "" {
		util.BadRequest(ctx, "department is required")
		return
	}

	windowDays := util.QueryInt(ctx.Query("windowDays"), 30)
	horizonDays, _ := strconv.ParseFloat(ctx.DefaultQuery("horizonDays", "7"), 64)

	series, err := c.Service.GetLearningLevelSeries(claims.UserID, department, windowDays, horizonDays)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, series)
}

// @Summary 学科平均学习水平
// @Tags 学情分析
// @Produce json
// @Security BearerAuth
// @Param department query string true "学科"
// @Success 200 {object} util.Response
// @Router /api/analytics/department [get]
func (c *AnalyticsController) GetDepartmentStats(ctx *gin.Context) {
	department := ctx.Query("department")
	if department == "" {
		util.BadRequest(ctx, "department is required")
		return
	}

	stats, err := c.Service.GetDepartmentStats(ctx.Request.Context(), department)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 最近诊断结果
// @Tags 学情分析
// @Produce json
// @Security BearerAuth
// @Param department query string false "学科"
// @Param limit query int false "数量上限"
// @Success 200 {object} util.Response
// @Router /api/analytics/recent-results [get]
func (c *AnalyticsController) GetRecentResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := util.QueryInt(ctx.Query("limit"), 10)
	results, err := c.Service.GetRecentResults(claims.UserID, ctx.Query("department"), limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, results)
}
