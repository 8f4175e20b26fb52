package controller

import (
	"edu_diagnosis_backend/internal/service"
	"edu_diagnosis_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Service *service.NotificationService
	Hub     *service.NotificationHub
}

func NewNotificationController(svc *service.NotificationService, hub *service.NotificationHub) *NotificationController {
	return &NotificationController{Service: svc, Hub: hub}
}

// @Summary 通知列表
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "只看未读"
// @Success 200 {object} util.Response
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	unreadOnly := ctx.Query("unread") == "true"

	alerts, total, err := c.Service.ListAlerts(claims.UserID, unreadOnly, page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: alerts, Total: total, Page: page, Limit: limit})
}

// @Summary 标记通知已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path int true "通知ID"
// @Success 200 {object} util.Response
// @Router /api/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.MarkRead(claims.UserID, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"read": true})
}

// @Summary 全部标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/notifications/read-all [post]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.MarkAllRead(claims.UserID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"read": true})
}

// @Summary 实时通知 WebSocket
// @Tags 通知
// @Security BearerAuth
// @Router /api/notifications/ws [get]
func (c *NotificationController) ServeWS(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Hub.ServeWS(ctx.Writer, ctx.Request, claims.UserID); err != nil {
		util.BadRequest(ctx, "websocket upgrade failed")
	}
}
