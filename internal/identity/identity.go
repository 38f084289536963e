package identity

import (
	"context"
	"errors"
	"fmt"
)

// Client is the external identity backend: a direct credential sign-in plus
// nothing else. The auth resolver is a pure client of this interface.
type Client interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
}

// Session is what the backend hands back for a successful sign-in.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Error taxonomy for sign-in failures. Credential mismatches are the only
// class the resolver is allowed to work around; everything else passes
// through untouched.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInfrastructure     = errors.New("identity backend unavailable")
	ErrNotFallbackSession = errors.New("not a fallback session")
)

// BackendError carries the raw backend response for operator logs.
type BackendError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("identity backend %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *BackendError) Unwrap() error {
	if e.IsCredentialFailure() {
		return ErrInvalidCredentials
	}
	return ErrInfrastructure
}

func (e *BackendError) IsCredentialFailure() bool {
	if e.StatusCode == 401 {
		return true
	}
	if e.StatusCode == 400 && (e.Code == "invalid_grant" || e.Code == "invalid_credentials") {
		return true
	}
	return false
}
