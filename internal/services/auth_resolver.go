package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnfinity/learnfinity-backend/internal/identity"
	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/normalization"
	"github.com/learnfinity/learnfinity-backend/internal/types"
)

// MappingStore looks up the fallback credential for a broken identity. The
// resolver only ever reads it; rows are managed by HR operators.
type MappingStore interface {
	Lookup(ctx context.Context, originalEmail string) (*types.CredentialMapping, error)
}

// ResolvedSession wraps the backend session together with the identity the
// caller asked for. When UsedFallback is set, DisplayEmail is the original
// (broken) identity and PrincipalEmail is the account that actually
// authenticated — the substitution is visible in the type instead of patched
// into the backend session.
type ResolvedSession struct {
	Session        *identity.Session
	PrincipalEmail string
	DisplayEmail   string
	UsedFallback   bool
}

// OriginalIdentity returns the displayed identity of a wrapped session.
// Callers holding a direct session should read Session.Email instead.
func (rs *ResolvedSession) OriginalIdentity() (string, error) {
	if rs == nil || !rs.UsedFallback {
		return "", identity.ErrNotFallbackSession
	}
	return rs.DisplayEmail, nil
}

var ErrFallbackAuthFailed = errors.New("fallback authentication failed")

// FallbackAuthError means a mapping existed but its fallback credential was
// rejected too — the mapping itself is stale. Both underlying errors are kept
// for the operator log; end users only ever see a generic failure.
type FallbackAuthError struct {
	OriginalEmail string
	FallbackEmail string
	OriginalErr   error
	FallbackErr   error
}

func (e *FallbackAuthError) Error() string {
	return fmt.Sprintf("fallback authentication failed: direct: %v; fallback: %v", e.OriginalErr, e.FallbackErr)
}

func (e *FallbackAuthError) Is(target error) bool {
	return target == ErrFallbackAuthFailed
}

type AuthResolver interface {
	Authenticate(ctx context.Context, email, password string) (*ResolvedSession, error)
}

type authResolver struct {
	log      *logger.Logger
	client   identity.Client
	mappings MappingStore
}

func NewAuthResolver(log *logger.Logger, client identity.Client, mappings MappingStore) AuthResolver {
	return &authResolver{
		log:      log.With("service", "AuthResolver"),
		client:   client,
		mappings: mappings,
	}
}

// Authenticate resolves (email, password) to a session, substituting the
// mapped fallback credential when — and only when — the direct attempt fails
// on credentials. Infrastructure failures propagate untouched: the workaround
// exists for credential mismatch, not for transient outages. At most two
// sequential backend calls, no retries.
func (ar *authResolver) Authenticate(ctx context.Context, email, password string) (*ResolvedSession, error) {
	email = normalization.ParseInputString(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: missing email or password", identity.ErrInvalidCredentials)
	}

	session, directErr := ar.client.SignIn(ctx, email, password)
	if directErr == nil {
		return &ResolvedSession{
			Session:        session,
			PrincipalEmail: session.Email,
			DisplayEmail:   session.Email,
			UsedFallback:   false,
		}, nil
	}

	if !errors.Is(directErr, identity.ErrInvalidCredentials) {
		return nil, directErr
	}

	mapping, lookupErr := ar.mappings.Lookup(ctx, email)
	if lookupErr != nil {
		ar.log.Warn("Mapping lookup failed, surfacing original error", "email", email, "error", lookupErr)
		return nil, directErr
	}
	if mapping == nil {
		return nil, directErr
	}

	fallbackSession, fallbackErr := ar.client.SignIn(ctx, mapping.FallbackEmail, mapping.FallbackPassword)
	if fallbackErr != nil {
		ar.log.Warn("Fallback credential rejected, mapping is stale",
			"email", email,
			"fallback_email", mapping.FallbackEmail,
			"direct_error", directErr.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return nil, &FallbackAuthError{
			OriginalEmail: email,
			FallbackEmail: mapping.FallbackEmail,
			OriginalErr:   directErr,
			FallbackErr:   fallbackErr,
		}
	}

	ar.log.Info("Authenticated via fallback mapping", "email", email, "fallback_email", mapping.FallbackEmail)
	return &ResolvedSession{
		Session:        fallbackSession,
		PrincipalEmail: fallbackSession.Email,
		DisplayEmail:   email,
		UsedFallback:   true,
	}, nil
}
