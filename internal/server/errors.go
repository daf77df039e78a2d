// Package server provides the HTTP REST API for the job tracker.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/job-tracker/internal/assistant"
	"github.com/jonathan/job-tracker/internal/fetch"
	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/users"
)

// ErrBadRequest reports a request the handler could not decode.
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		badRequest      *ErrBadRequest
		notFound        *store.NotFoundError
		conflict        *store.ConflictError
		storeValidation *store.ValidationError
		emailTaken      *users.ErrEmailAlreadyExists
		badCredentials  *users.ErrInvalidCredentials
		wrongPassword   *users.ErrPasswordMismatch
		userNotFound    *users.ErrUserNotFound
		userValidation  *users.ErrValidation
		schemaInvalid   *schemas.ValidationError
		fetchErr        *fetch.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &badRequest),
		errors.As(err, &storeValidation),
		errors.As(err, &userValidation),
		errors.As(err, &schemaInvalid),
		errors.Is(err, assistant.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.As(err, &badCredentials), errors.As(err, &wrongPassword):
		return http.StatusUnauthorized
	case errors.As(err, &notFound), errors.As(err, &userNotFound):
		return http.StatusNotFound
	case errors.As(err, &conflict),
		errors.As(err, &emailTaken),
		errors.Is(err, store.ErrLastFolder),
		errors.Is(err, assistant.ErrNoPendingJob):
		return http.StatusConflict
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
