package controller

import (
	"edu_diagnosis_backend/internal/service"
	"edu_diagnosis_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	Service *service.QuestionService
}

func NewQuestionController(svc *service.QuestionService) *QuestionController {
	return &QuestionController{Service: svc}
}

// @Summary 创建题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.QuestionRequest true "题目内容"
// @Success 200 {object} util.Response
// @Router /api/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.Service.Create(req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// @Summary 题目详情
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	question, err := c.Service.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary 更新题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param request body service.QuestionRequest true "题目内容"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.Service.Update(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary 删除题目
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary 题目列表
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param department query string false "学部"
// @Param domain query string false "知识域"
// @Param difficulty query int false "难度 1-5"
// @Success 200 {object} util.Response
// @Router /api/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)
	difficulty := util.QueryInt(ctx.Query("difficulty"), 0)

	questions, total, err := c.Service.List(ctx.Query("department"), ctx.Query("domain"), difficulty, page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: questions, Total: total, Page: page, Limit: limit})
}

// @Summary 抽取诊断试题
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param count query int false "题目数量"
// @Success 200 {object} util.Response
// @Router /api/questions/draw [get]
func (c *QuestionController) Draw(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	count := util.QueryInt(ctx.Query("count"), 0)
	questions, err := c.Service.DrawForSession(claims.Department, count)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}
