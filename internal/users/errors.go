package users

import (
	"fmt"

	"github.com/google/uuid"
)

// User-facing messages. Errors from this package return them from Error()
// so API clients can show them as-is.
const (
	MsgPasswordMismatch   = "两次输入的密码不一致"
	MsgEmailTaken         = "该邮箱已被注册"
	MsgInvalidCredentials = "邮箱或密码错误"
	MsgWrongOldPassword   = "旧密码错误"
	MsgUserNotFound       = "用户不存在"

	MsgRegistered      = "注册成功！"
	MsgLoggedIn        = "登录成功！"
	MsgLoggedOut       = "已退出登录"
	MsgProfileUpdated  = "个人信息已更新"
	MsgPasswordUpdated = "密码修改成功"

	MsgRegisterFailed = "注册失败，请重试"
	MsgLoginFailed    = "登录失败，请重试"
	MsgUpdateFailed   = "更新失败，请重试"
	MsgPasswordFailed = "修改失败，请重试"
)

// PasswordTooShortMessage is the message for a password below minLength characters.
func PasswordTooShortMessage(minLength int) string {
	return fmt.Sprintf("密码长度至少为%d位", minLength)
}

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return MsgEmailTaken
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return MsgInvalidCredentials
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return MsgUserNotFound
}

// ErrPasswordMismatch indicates the current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return MsgWrongOldPassword
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Message
}
