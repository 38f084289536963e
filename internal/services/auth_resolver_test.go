package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/learnfinity/learnfinity-backend/internal/identity"
	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/types"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

// fakeIdentityClient authenticates against an in-memory credential table and
// counts calls so tests can assert the two-call ceiling.
type fakeIdentityClient struct {
	passwords map[string]string
	infraErr  error
	calls     []string
}

func (f *fakeIdentityClient) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	f.calls = append(f.calls, email)
	if f.infraErr != nil {
		return nil, f.infraErr
	}
	want, ok := f.passwords[email]
	if !ok || want != password {
		return nil, fmt.Errorf("sign in rejected: %w", identity.ErrInvalidCredentials)
	}
	return &identity.Session{
		UserID:      email,
		Email:       email,
		AccessToken: "token-" + email,
	}, nil
}

type fakeMappingStore struct {
	mappings  map[string]*types.CredentialMapping
	lookupErr error
	lookups   int
}

func (f *fakeMappingStore) Lookup(ctx context.Context, originalEmail string) (*types.CredentialMapping, error) {
	f.lookups++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.mappings[originalEmail], nil
}

func TestAuthenticateDirectSuccessSkipsMapping(t *testing.T) {
	client := &fakeIdentityClient{passwords: map[string]string{"alice@corp.com": "pw"}}
	store := &fakeMappingStore{mappings: map[string]*types.CredentialMapping{
		"alice@corp.com": {OriginalEmail: "alice@corp.com", FallbackEmail: "backup@corp.com", FallbackPassword: "other"},
	}}
	resolver := NewAuthResolver(mustTestLogger(t), client, store)

	session, err := resolver.Authenticate(context.Background(), "alice@corp.com", "pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if session.UsedFallback {
		t.Fatalf("direct success must not be marked as fallback")
	}
	if session.DisplayEmail != "alice@corp.com" {
		t.Fatalf("display email: want=%s got=%s", "alice@corp.com", session.DisplayEmail)
	}
	if store.lookups != 0 {
		t.Fatalf("mapping store consulted on direct success: lookups=%d", store.lookups)
	}
	if _, err := session.OriginalIdentity(); !errors.Is(err, identity.ErrNotFallbackSession) {
		t.Fatalf("OriginalIdentity on direct session: want ErrNotFallbackSession got %v", err)
	}
}

func TestAuthenticateNoMappingSurfacesInvalidCredentials(t *testing.T) {
	client := &fakeIdentityClient{passwords: map[string]string{"alice@corp.com": "pw"}}
	store := &fakeMappingStore{mappings: map[string]*types.CredentialMapping{}}
	resolver := NewAuthResolver(mustTestLogger(t), client, store)

	_, err := resolver.Authenticate(context.Background(), "alice@corp.com", "wrong")
	if !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
	if store.lookups != 1 {
		t.Fatalf("mapping store lookups: want=1 got=%d", store.lookups)
	}
	if len(client.calls) != 1 {
		t.Fatalf("backend calls: want=1 got=%d", len(client.calls))
	}
}

func TestAuthenticateFallbackSuccessWrapsSession(t *testing.T) {
	client := &fakeIdentityClient{passwords: map[string]string{"backup@corp.com": "bpw"}}
	store := &fakeMappingStore{mappings: map[string]*types.CredentialMapping{
		"alice@corp.com": {OriginalEmail: "alice@corp.com", FallbackEmail: "backup@corp.com", FallbackPassword: "bpw"},
	}}
	resolver := NewAuthResolver(mustTestLogger(t), client, store)

	session, err := resolver.Authenticate(context.Background(), "alice@corp.com", "whatever")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !session.UsedFallback {
		t.Fatalf("fallback session not marked")
	}
	if session.DisplayEmail != "alice@corp.com" {
		t.Fatalf("display email: want original got %s", session.DisplayEmail)
	}
	if session.PrincipalEmail != "backup@corp.com" {
		t.Fatalf("principal email: want fallback got %s", session.PrincipalEmail)
	}
	original, err := session.OriginalIdentity()
	if err != nil {
		t.Fatalf("OriginalIdentity: %v", err)
	}
	if original != "alice@corp.com" {
		t.Fatalf("OriginalIdentity: want=%s got=%s", "alice@corp.com", original)
	}
	if len(client.calls) != 2 {
		t.Fatalf("backend calls: want=2 got=%d", len(client.calls))
	}
}

func TestAuthenticateStaleMappingReturnsFallbackError(t *testing.T) {
	client := &fakeIdentityClient{passwords: map[string]string{}}
	store := &fakeMappingStore{mappings: map[string]*types.CredentialMapping{
		"alice@corp.com": {OriginalEmail: "alice@corp.com", FallbackEmail: "backup@corp.com", FallbackPassword: "stale"},
	}}
	resolver := NewAuthResolver(mustTestLogger(t), client, store)

	_, err := resolver.Authenticate(context.Background(), "alice@corp.com", "whatever")
	if !errors.Is(err, ErrFallbackAuthFailed) {
		t.Fatalf("want ErrFallbackAuthFailed got %v", err)
	}
	var fbErr *FallbackAuthError
	if !errors.As(err, &fbErr) {
		t.Fatalf("want *FallbackAuthError got %T", err)
	}
	if fbErr.OriginalEmail != "alice@corp.com" || fbErr.FallbackEmail != "backup@corp.com" {
		t.Fatalf("error identities: got original=%s fallback=%s", fbErr.OriginalEmail, fbErr.FallbackEmail)
	}
	if fbErr.OriginalErr == nil || fbErr.FallbackErr == nil {
		t.Fatalf("both underlying errors must be preserved")
	}
	if len(client.calls) != 2 {
		t.Fatalf("backend calls: want=2 got=%d", len(client.calls))
	}
}

func TestAuthenticateInfrastructureErrorBypassesMapping(t *testing.T) {
	infra := fmt.Errorf("backend unreachable: %w", identity.ErrInfrastructure)
	client := &fakeIdentityClient{infraErr: infra}
	store := &fakeMappingStore{mappings: map[string]*types.CredentialMapping{
		"alice@corp.com": {OriginalEmail: "alice@corp.com", FallbackEmail: "backup@corp.com", FallbackPassword: "bpw"},
	}}
	resolver := NewAuthResolver(mustTestLogger(t), client, store)

	_, err := resolver.Authenticate(context.Background(), "alice@corp.com", "pw")
	if !errors.Is(err, identity.ErrInfrastructure) {
		t.Fatalf("want infrastructure error got %v", err)
	}
	if store.lookups != 0 {
		t.Fatalf("mapping store must not be consulted on infrastructure errors: lookups=%d", store.lookups)
	}
	if len(client.calls) != 1 {
		t.Fatalf("backend calls: want=1 got=%d", len(client.calls))
	}
}

func TestAuthenticateLookupErrorSurfacesOriginalError(t *testing.T) {
	client := &fakeIdentityClient{passwords: map[string]string{}}
	store := &fakeMappingStore{lookupErr: errors.New("mapping store down")}
	resolver := NewAuthResolver(mustTestLogger(t), client, store)

	_, err := resolver.Authenticate(context.Background(), "alice@corp.com", "pw")
	if !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("lookup failure must surface the original credential error, got %v", err)
	}
}

func TestAuthenticateNormalizesEmail(t *testing.T) {
	client := &fakeIdentityClient{passwords: map[string]string{"alice@corp.com": "pw"}}
	store := &fakeMappingStore{}
	resolver := NewAuthResolver(mustTestLogger(t), client, store)

	session, err := resolver.Authenticate(context.Background(), "  ALICE@corp.com ", "pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if session.DisplayEmail != "alice@corp.com" {
		t.Fatalf("display email: want normalized got %s", session.DisplayEmail)
	}
}
