package server

import (
	"net/http"
	"testing"

	"github.com/jonathan/job-tracker/internal/types"
	"github.com/jonathan/job-tracker/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleRegister(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/auth/register", types.RegisterRequest{
		Nickname:        "小李",
		Email:           "li@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody[types.LoginResponse](t, w)
	assert.Equal(t, "小李", resp.User.Nickname)
	assert.Equal(t, "li@example.com", resp.User.Email)
	require.NotEmpty(t, resp.Token)

	me := env.request(t, http.MethodGet, "/me", nil, resp.Token)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, resp.User.ID, decodeBody[types.User](t, me).ID)
	assert.Equal(t, users.MsgRegistered, env.lastNotification(t).Message)
}

func TestHandleRegister_Failures(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		req     types.RegisterRequest
		status  int
		message string
	}{
		{
			name:    "passwords differ",
			req:     types.RegisterRequest{Nickname: "a", Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret2"},
			status:  http.StatusBadRequest,
			message: users.MsgPasswordMismatch,
		},
		{
			name:    "password too short",
			req:     types.RegisterRequest{Nickname: "a", Email: "a@example.com", Password: "123", ConfirmPassword: "123"},
			status:  http.StatusBadRequest,
			message: users.PasswordTooShortMessage(6),
		},
		{
			name:    "email taken",
			req:     types.RegisterRequest{Nickname: "a", Email: "TESTER@example.com", Password: "secret1", ConfirmPassword: "secret1"},
			status:  http.StatusConflict,
			message: users.MsgEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.request(t, http.MethodPost, "/auth/register", tt.req, "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, errorMessage(t, w))
		})
	}
}

func TestHandleLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/auth/login", types.LoginRequest{
		Email:    "tester@example.com",
		Password: "secret1",
	}, "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[types.LoginResponse](t, w)
	assert.Equal(t, env.user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/auth/login", types.LoginRequest{
		Email:    "tester@example.com",
		Password: "wrong-password",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, users.MsgInvalidCredentials, errorMessage(t, w))
	assert.Equal(t, types.SeverityError, env.lastNotification(t).Type)
}

func TestHandleLogout(t *testing.T) {
	env := newTestEnv(t)
	require.NotNil(t, env.store.CurrentUser())

	w := env.do(t, http.MethodPost, "/auth/logout", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, env.store.CurrentUser())
}

func TestHandleUpdateMe(t *testing.T) {
	env := newTestEnv(t)
	nickname := "新昵称"

	w := env.do(t, http.MethodPut, "/me", types.UpdateProfileRequest{Nickname: &nickname})

	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody[types.User](t, w)
	assert.Equal(t, nickname, user.Nickname)
	assert.Equal(t, "tester@example.com", user.Email)
	assert.Equal(t, users.MsgProfileUpdated, env.lastNotification(t).Message)
}

func TestHandleUpdatePassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/me/password", types.UpdatePasswordRequest{
		OldPassword:     "not-it",
		NewPassword:     "secret2",
		ConfirmPassword: "secret2",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, users.MsgWrongOldPassword, errorMessage(t, w))

	w = env.do(t, http.MethodPut, "/me/password", types.UpdatePasswordRequest{
		OldPassword:     "secret1",
		NewPassword:     "secret2",
		ConfirmPassword: "secret2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	login := env.request(t, http.MethodPost, "/auth/login", types.LoginRequest{
		Email:    "tester@example.com",
		Password: "secret2",
	}, "")
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestHandleGetMe_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	token, err := env.server.jwtService.GenerateToken(types.User{}.ID)
	require.NoError(t, err)

	// A nil user id is rejected when the token is validated.
	w := env.request(t, http.MethodGet, "/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
