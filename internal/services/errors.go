package services

import (
	"errors"
	"fmt"
	"net/http"

	"biodb-backend-go/internal/db"
)

var (
	ErrDuplicateRegistrationNumber = errors.New("registration number already exists")
	ErrInvalidCredentials          = errors.New("invalid credentials")
	ErrValidation                  = errors.New("validation failed")
	ErrStorageUnavailable          = db.ErrUnavailable
	ErrForbidden                   = errors.New("not allowed for this role")
	ErrNotAuthenticated            = errors.New("not logged in")
	ErrAlreadyAuthenticated        = errors.New("already logged in")
	ErrNotAvailable                = errors.New("feature to reset password coming soon")
)

type ServiceError struct {
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

// ValidationError wraps ErrValidation with a user-facing message.
func ValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// ToServiceError maps a domain error onto the status and message shown to the user.
func ToServiceError(err error) ServiceError {
	var serr ServiceError
	switch {
	case errors.As(err, &serr):
		return serr
	case errors.Is(err, ErrDuplicateRegistrationNumber):
		return ServiceError{Status: http.StatusConflict, Message: "Registration number already exists. Please use a different one."}
	case errors.Is(err, ErrInvalidCredentials):
		return ServiceError{Status: http.StatusUnauthorized, Message: "Invalid credentials. Please try again."}
	case errors.Is(err, ErrValidation):
		return ServiceError{Status: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, ErrForbidden):
		return ServiceError{Status: http.StatusForbidden, Message: "Not allowed"}
	case errors.Is(err, ErrNotAuthenticated):
		return ServiceError{Status: http.StatusUnauthorized, Message: "Authentication required"}
	case errors.Is(err, ErrAlreadyAuthenticated):
		return ServiceError{Status: http.StatusConflict, Message: "Already logged in"}
	case errors.Is(err, ErrNotAvailable):
		return ServiceError{Status: http.StatusNotImplemented, Message: "Feature to reset password coming soon!"}
	case errors.Is(err, ErrStorageUnavailable):
		return ServiceError{Status: http.StatusServiceUnavailable, Message: "Storage unavailable"}
	default:
		return ServiceError{Status: http.StatusInternalServerError, Message: "Internal server error"}
	}
}
