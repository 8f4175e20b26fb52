package controller

import (
	"edu_diagnosis_backend/internal/service"
	"edu_diagnosis_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DiagnosisController struct {
	Service *service.DiagnosisService
}

func NewDiagnosisController(svc *service.DiagnosisService) *DiagnosisController {
	return &DiagnosisController{Service: svc}
}

// @Summary 开始诊断会话
// @Tags 诊断测试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.StartSessionRequest true "会话参数"
// @Success 201 {object} util.Response
// @Router /api/diagnosis/sessions [post]
func (c *DiagnosisController) StartSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.StartSession(claims.UserID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// @Summary 提交单题作答
// @Tags 诊断测试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Param body body service.SubmitAnswerRequest true "作答内容"
// @Success 200 {object} util.Response
// @Router /api/diagnosis/sessions/{id}/answers [post]
func (c *DiagnosisController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SubmitAnswer(claims.UserID, ctx.Param("id"), req); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"accepted": true})
}

// @Summary 完成诊断会话并评分
// @Tags 诊断测试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Param body body service.CompleteSessionRequest true "提交汇总"
// @Success 200 {object} util.Response
// @Router /api/diagnosis/sessions/{id}/complete [post]
func (c *DiagnosisController) CompleteSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CompleteSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.CompleteSession(claims.UserID, ctx.Param("id"), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 会话详情
// @Tags 诊断测试
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/diagnosis/sessions/{id} [get]
func (c *DiagnosisController) GetSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.Service.GetSession(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// @Summary 会话评分结果
// @Tags 诊断测试
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/diagnosis/sessions/{id}/result [get]
func (c *DiagnosisController) GetResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.GetResult(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 我的会话列表
// @Tags 诊断测试
// @Produce json
// @Security BearerAuth
// @Param department query string false "学科"
// @Success 200 {object} util.Response
// @Router /api/diagnosis/sessions [get]
func (c *DiagnosisController) ListSessions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	sessions, total, err := c.Service.ListSessions(claims.UserID, ctx.Query("department"), page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: sessions, Total: total, Page: page, Limit: limit})
}

// @Summary 清理过期会话数据
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/diagnosis/cleanup [post]
func (c *DiagnosisController) Cleanup(ctx *gin.Context) {
	deleted, err := c.Service.CleanupStaleSessions()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": deleted})
}
