package service

import (
	"Procura/internal/chat"
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid       = errors.New("参数错误")
	ErrCompanyNotFound    = errors.New("公司不存在")
	ErrRequestNotFound    = errors.New("采购需求不存在")
	ErrQuoteNotFound      = errors.New("报价不存在")
	ErrQuoteMismatch      = errors.New("报价与采购需求不匹配")
	ErrConversation       = errors.New("会话异常")
	ErrConversationClosed = errors.New("会话已关闭")
	UnauthorizedError     = errors.New("权限不足")
	UnExpectedError       = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrCompanyNotFound:     NotFound,
	ErrRequestNotFound:     NotFound,
	ErrQuoteNotFound:       NotFound,
	ErrQuoteMismatch:       BadRequest,
	ErrConversation:        BadRequest,
	ErrConversationClosed:  BadRequest,
	UnauthorizedError:      Unauthorized,
	UnExpectedError:        InternalServerError,
	chat.ErrNotSignedIn:    Unauthorized,
	chat.ErrEmptyMessage:   BadRequest,
	chat.ErrNoConversation: BadRequest,
	chat.ErrNotParticipant: Unauthorized,
}
