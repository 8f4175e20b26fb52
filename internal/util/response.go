package util

import (
	"edu_diagnosis_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Gone(c *gin.Context, message string) {
	Error(c, http.StatusGone, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// HandleServiceError 将服务层的分类错误翻译为 HTTP 状态码。
// 超时映射为 410 Gone，与普通无效请求区分。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionExpired):
		Gone(c, err.Error())
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrMatchNotFound),
		errors.Is(err, ErrAlertNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidSessionState),
		errors.Is(err, ErrInvalidMatchState),
		errors.Is(err, ErrMatchExists):
		Conflict(c, err.Error())
	case errors.Is(err, ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c)
	default:
		LogInternalError(c, err)
	}
}
