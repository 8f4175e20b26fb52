package controller

import (
	"edu_diagnosis_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// pagination 解析 page/limit 查询参数并限定范围
func pagination(ctx *gin.Context) (int, int) {
	page := util.QueryInt(ctx.Query("page"), 1)
	limit := util.QueryInt(ctx.Query("limit"), 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
