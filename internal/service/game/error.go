package game

import (
	"errors"
	"fmt"
)

// 错误分类是封闭的：所有跨实体传递失败一律折算为 ErrInternal
var (
	ErrInvalidSession = errors.New("invalid session id")
	ErrInvalidSecret  = errors.New("invalid secret")
	ErrInternal       = errors.New("internal error")
	ErrWrongState     = errors.New("wrong state for action")
)

// 错误码，随 Error 响应发送给客户端
const (
	CODE_INVALID_PLAYER_NAME = "InvalidPlayerName"
	CODE_INVALID_SESSION     = "InvalidSession"
	CODE_INVALID_SECRET      = "InvalidSecret"
	CODE_PLAYER_NAME_TAKEN   = "PlayerNameTaken"
	CODE_INTERNAL_ERROR      = "InternalError"
	CODE_WRONG_STATE         = "WrongStateForAction"
)

type InvalidPlayerNameError struct {
	Name string
}

func (e *InvalidPlayerNameError) Error() string {
	return fmt.Sprintf("invalid player name: %s", e.Name)
}

type PlayerNameTakenError struct {
	Name string
}

func (e *PlayerNameTakenError) Error() string {
	return fmt.Sprintf("name %s is already taken!", e.Name)
}

// ErrorCode 将错误折算为对应的错误码
// 不在分类内的错误一律按内部错误处理
func ErrorCode(err error) string {
	var nameErr *InvalidPlayerNameError
	if errors.As(err, &nameErr) {
		return CODE_INVALID_PLAYER_NAME
	}

	var takenErr *PlayerNameTakenError
	if errors.As(err, &takenErr) {
		return CODE_PLAYER_NAME_TAKEN
	}

	switch {
	case errors.Is(err, ErrInvalidSession):
		return CODE_INVALID_SESSION
	case errors.Is(err, ErrInvalidSecret):
		return CODE_INVALID_SECRET
	case errors.Is(err, ErrWrongState):
		return CODE_WRONG_STATE
	default:
		return CODE_INTERNAL_ERROR
	}
}

// ErrorMessage 返回随错误码下发的文案
func ErrorMessage(err error) string {
	if ErrorCode(err) == CODE_INTERNAL_ERROR {
		return ErrInternal.Error()
	}

	return err.Error()
}
