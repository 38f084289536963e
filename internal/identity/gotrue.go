package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/learnfinity/learnfinity-backend/internal/logger"
)

// goTrueClient signs in against a hosted GoTrue-style auth endpoint
// (Supabase). Only the password grant is used.
type goTrueClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewGoTrueClient(log *logger.Logger) (Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("IDENTITY_BASE_URL"))
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv("SUPABASE_URL"))
	}
	if baseURL == "" {
		return nil, fmt.Errorf("missing IDENTITY_BASE_URL")
	}
	apiKey := strings.TrimSpace(os.Getenv("IDENTITY_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("SUPABASE_KEY"))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("missing IDENTITY_API_KEY")
	}

	timeoutSec := 15
	if v := os.Getenv("IDENTITY_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &goTrueClient{
		log:        log.With("service", "GoTrueClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

func (c *goTrueClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal sign-in payload: %w", err)
	}

	url := c.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures are infrastructure, never a credential mismatch.
		return nil, fmt.Errorf("%w: %v", ErrInfrastructure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrInfrastructure, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error            string `json:"error"`
			ErrorCode        string `json:"error_code"`
			ErrorDescription string `json:"error_description"`
			Msg              string `json:"msg"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		code := apiErr.ErrorCode
		if code == "" {
			code = apiErr.Error
		}
		msg := apiErr.ErrorDescription
		if msg == "" {
			msg = apiErr.Msg
		}
		return nil, &BackendError{StatusCode: resp.StatusCode, Code: code, Message: msg}
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
		User         struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrInfrastructure, err)
	}

	return &Session{
		UserID:       out.User.ID,
		Email:        out.User.Email,
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}
