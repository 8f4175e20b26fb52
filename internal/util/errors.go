package util

import "errors"

// 核心错误分类：会话不存在/不属于调用者、状态不允许、超时、入参非法。
// 控制器层负责翻译为 HTTP 状态码，超时单独映射 410 以便前端区分。
var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidSessionState = errors.New("session is not in progress")
	ErrSessionExpired      = errors.New("session time limit exceeded")
	ErrValidation          = errors.New("invalid request")
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchExists         = errors.New("match already exists")
	ErrInvalidMatchState   = errors.New("match does not allow this action")
	ErrAlertNotFound       = errors.New("alert not found")
	ErrPermissionDenied    = errors.New("permission denied")
)
