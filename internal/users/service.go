// Package users implements account registration, login and profile
// management. Outcomes are reported to the user as notifications.
package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/types"
)

// SessionStore tracks the signed-in user. *store.Store implements it.
type SessionStore interface {
	SetCurrentUser(u *types.User)
	ClearCurrentUser()
}

// Notifier surfaces outcomes to the user. *store.Store implements it.
type Notifier interface {
	Notify(severity types.Severity, message string) string
}

// Service provides business logic for account operations
type Service struct {
	repo      Repository
	passwords *config.PasswordConfig
	session   SessionStore
	notifier  Notifier
}

// NewService creates a Service. session and notifier may be nil.
func NewService(repo Repository, passwords *config.PasswordConfig, session SessionStore, notifier Notifier) *Service {
	return &Service{
		repo:      repo,
		passwords: passwords,
		session:   session,
		notifier:  notifier,
	}
}

// Register creates an account, signs it in and returns it.
func (s *Service) Register(ctx context.Context, req *types.RegisterRequest) (*types.User, error) {
	if req.Password != req.ConfirmPassword {
		return nil, s.fail(&ErrValidation{Field: "confirmPassword", Message: MsgPasswordMismatch})
	}
	if !s.passwords.LongEnough(req.Password) {
		return nil, s.fail(&ErrValidation{Field: "password", Message: PasswordTooShortMessage(s.passwords.MinPasswordLength())})
	}
	if err := req.Validate(); err != nil {
		return nil, s.fail(validationError(err))
	}

	exists, err := s.repo.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, s.internal(MsgRegisterFailed, fmt.Errorf("failed to check email existence: %w", err))
	}
	if exists {
		return nil, s.fail(&ErrEmailAlreadyExists{Email: req.Email})
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, s.internal(MsgRegisterFailed, err)
	}

	account := &db.User{
		Nickname:     strings.TrimSpace(req.Nickname),
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.repo.CreateUser(ctx, account); err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			return nil, s.fail(&ErrEmailAlreadyExists{Email: req.Email})
		}
		return nil, s.internal(MsgRegisterFailed, fmt.Errorf("failed to create user: %w", err))
	}

	user := account.Public()
	s.signIn(user)
	s.notify(types.SeveritySuccess, MsgRegistered)
	return user, nil
}

// Login verifies credentials, signs the user in and returns them.
func (s *Service) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	account, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.internal(MsgLoginFailed, fmt.Errorf("failed to get user by email: %w", err))
	}

	// Unknown email and wrong password are indistinguishable to the caller.
	if account == nil || !s.passwords.VerifyPassword(req.Password, account.PasswordHash) {
		return nil, s.fail(&ErrInvalidCredentials{})
	}

	user := account.Public()
	s.signIn(user)
	s.notify(types.SeveritySuccess, MsgLoggedIn)
	return user, nil
}

// Logout signs the current user out.
func (s *Service) Logout() {
	if s.session != nil {
		s.session.ClearCurrentUser()
	}
	s.notify(types.SeverityInfo, MsgLoggedOut)
}

// Get returns the account with id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	account, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if account == nil {
		return nil, &ErrUserNotFound{UserID: id}
	}
	return account.Public(), nil
}

// UpdateProfile merges the non-nil fields of req into the account.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req *types.UpdateProfileRequest) (*types.User, error) {
	if err := req.Validate(); err != nil {
		return nil, s.fail(validationError(err))
	}

	account, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, s.internal(MsgUpdateFailed, fmt.Errorf("failed to get user: %w", err))
	}
	if account == nil {
		return nil, s.fail(&ErrUserNotFound{UserID: id})
	}

	updated := *account
	if req.Nickname != nil {
		updated.Nickname = strings.TrimSpace(*req.Nickname)
	}
	if req.Avatar != nil {
		updated.Avatar = *req.Avatar
	}
	if req.Email != nil {
		updated.Email = *req.Email
	}

	if err := s.repo.UpdateUser(ctx, &updated); err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			return nil, s.fail(&ErrEmailAlreadyExists{Email: updated.Email})
		}
		return nil, s.internal(MsgUpdateFailed, fmt.Errorf("failed to update user: %w", err))
	}

	user := updated.Public()
	s.signIn(user)
	s.notify(types.SeveritySuccess, MsgProfileUpdated)
	return user, nil
}

// UpdatePassword replaces the password after checking the old one.
func (s *Service) UpdatePassword(ctx context.Context, id uuid.UUID, req *types.UpdatePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return s.fail(&ErrValidation{Field: "confirmPassword", Message: MsgPasswordMismatch})
	}
	if !s.passwords.LongEnough(req.NewPassword) {
		return s.fail(&ErrValidation{Field: "newPassword", Message: PasswordTooShortMessage(s.passwords.MinPasswordLength())})
	}

	account, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return s.internal(MsgPasswordFailed, fmt.Errorf("failed to get user: %w", err))
	}
	if account == nil {
		return s.fail(&ErrUserNotFound{UserID: id})
	}
	if !s.passwords.VerifyPassword(req.OldPassword, account.PasswordHash) {
		return s.fail(&ErrPasswordMismatch{})
	}

	hash, err := s.passwords.HashPassword(req.NewPassword)
	if err != nil {
		return s.internal(MsgPasswordFailed, fmt.Errorf("failed to hash new password: %w", err))
	}
	updated := *account
	updated.PasswordHash = hash
	if err := s.repo.UpdateUser(ctx, &updated); err != nil {
		return s.internal(MsgPasswordFailed, fmt.Errorf("failed to update password: %w", err))
	}

	s.notify(types.SeveritySuccess, MsgPasswordUpdated)
	return nil
}

func (s *Service) signIn(u *types.User) {
	if s.session != nil {
		s.session.SetCurrentUser(u)
	}
}

func (s *Service) notify(severity types.Severity, msg string) {
	if s.notifier != nil {
		s.notifier.Notify(severity, msg)
	}
}

// fail reports a user-facing error and returns it.
func (s *Service) fail(err error) error {
	s.notify(types.SeverityError, err.Error())
	return err
}

// internal logs an unexpected failure and reports a generic message.
func (s *Service) internal(msg string, err error) error {
	log.Printf("[users] %v", err)
	s.notify(types.SeverityError, msg)
	return err
}

var fieldLabels = map[string]string{
	"Nickname":        "昵称",
	"Email":           "邮箱",
	"Password":        "密码",
	"ConfirmPassword": "确认密码",
	"Avatar":          "头像",
}

// validationError converts validator errors to the first failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ErrValidation{Message: err.Error()}
	}
	fe := verrs[0]
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	msg := label + "格式不正确"
	if fe.Tag() == "required" {
		msg = "请输入" + label
	}
	return &ErrValidation{Field: lowerFirst(fe.Field()), Message: msg}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
