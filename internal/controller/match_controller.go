package controller

import (
	"edu_diagnosis_backend/internal/model"
	"edu_diagnosis_backend/internal/service"
	"edu_diagnosis_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MatchController struct {
	Service *service.MatchService
}

func NewMatchController(svc *service.MatchService) *MatchController {
	return &MatchController{Service: svc}
}

// @Summary 发起配对申请
// @Tags 配对
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.MatchRequest true "目标教授"
// @Success 201 {object} util.Response
// @Router /api/matches [post]
func (c *MatchController) RequestMatch(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.MatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	match, err := c.Service.RequestMatch(claims.UserID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, match)
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

// @Summary 处理配对申请
// @Tags 配对
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "配对ID"
// @Param body body respondRequest true "是否接受"
// @Success 200 {object} util.Response
// @Router /api/matches/{id}/respond [post]
func (c *MatchController) Respond(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req respondRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	match, err := c.Service.Respond(claims.UserID, util.MustParseUint(ctx.Param("id")), req.Accept)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, match)
}

// @Summary 解除配对
// @Tags 配对
// @Produce json
// @Security BearerAuth
// @Param id path int true "配对ID"
// @Success 200 {object} util.Response
// @Router /api/matches/{id} [delete]
func (c *MatchController) Dissolve(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.Dissolve(claims.UserID, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"dissolved": true})
}

// @Summary 我的配对列表
// @Tags 配对
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态过滤"
// @Success 200 {object} util.Response
// @Router /api/matches [get]
func (c *MatchController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	status := model.MatchStatus(ctx.Query("status"))

	var (
		matches []model.ProfessorStudentMatch
		total   int64
		err     error
	)
	if claims.Role == model.Professor {
		matches, total, err = c.Service.ListForProfessor(claims.UserID, status, page, limit)
	} else {
		matches, total, err = c.Service.ListForStudent(claims.UserID, status, page, limit)
	}
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: matches, Total: total, Page: page, Limit: limit})
}

// @Summary 可配对教授列表
// @Tags 配对
// @Produce json
// @Security BearerAuth
// @Param department query string false "学科，默认取自己所在学科"
// @Success 200 {object} util.Response
// @Router /api/matches/professors [get]
func (c *MatchController) ListProfessors(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	department := ctx.Query("department")
	if department == "" {
		department = claims.Department
	}

	page, limit := pagination(ctx)
	professors, total, err := c.Service.ListProfessors(department, page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: professors, Total: total, Page: page, Limit: limit})
}
