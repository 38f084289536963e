package identity

import (
	"errors"
	"testing"
)

func TestBackendErrorCredentialClassification(t *testing.T) {
	cases := []struct {
		name       string
		err        *BackendError
		credential bool
	}{
		{"401", &BackendError{StatusCode: 401, Code: "invalid_grant"}, true},
		{"400 invalid_grant", &BackendError{StatusCode: 400, Code: "invalid_grant"}, true},
		{"400 invalid_credentials", &BackendError{StatusCode: 400, Code: "invalid_credentials"}, true},
		{"400 other", &BackendError{StatusCode: 400, Code: "validation_failed"}, false},
		{"500", &BackendError{StatusCode: 500}, false},
		{"503", &BackendError{StatusCode: 503}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.IsCredentialFailure(); got != tc.credential {
				t.Fatalf("IsCredentialFailure: want=%v got=%v", tc.credential, got)
			}
			if tc.credential {
				if !errors.Is(tc.err, ErrInvalidCredentials) {
					t.Fatalf("want errors.Is ErrInvalidCredentials")
				}
				if errors.Is(tc.err, ErrInfrastructure) {
					t.Fatalf("credential failure must not match ErrInfrastructure")
				}
			} else {
				if !errors.Is(tc.err, ErrInfrastructure) {
					t.Fatalf("want errors.Is ErrInfrastructure")
				}
				if errors.Is(tc.err, ErrInvalidCredentials) {
					t.Fatalf("infrastructure failure must not match ErrInvalidCredentials")
				}
			}
		})
	}
}
