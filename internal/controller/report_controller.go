package controller

import (
	"fmt"

	"edu_diagnosis_backend/internal/service"
	"edu_diagnosis_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	Service *service.ReportService
}

func NewReportController(svc *service.ReportService) *ReportController {
	return &ReportController{Service: svc}
}

// @Summary 导出诊断报告
// @Tags 报告
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {file} binary
// @Router /api/diagnosis/sessions/{id}/report [get]
func (c *ReportController) Export(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionID := ctx.Param("id")
	raw, err := c.Service.Export(ctx.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=diagnosis_report_%s.json", sessionID))
	ctx.Data(200, "application/json", raw)
}
