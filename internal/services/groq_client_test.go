package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestGroqClient(t *testing.T, serverURL string) GroqClient {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("GROQ_BASE_URL", serverURL)
	t.Setenv("GROQ_MAX_RETRIES", "1")
	client, err := NewGroqClient(mustTestLogger(t))
	if err != nil {
		t.Fatalf("NewGroqClient: %v", err)
	}
	return client
}

func chatResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestGenerateJSONDecodesChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: got %q", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if rf, ok := req["response_format"].(map[string]any); !ok || rf["type"] != "json_object" {
			t.Errorf("response_format: got %v", req["response_format"])
		}
		_ = json.NewEncoder(w).Encode(chatResponse(`{"background":"ten years in sales"}`))
	}))
	defer srv.Close()

	client := newTestGroqClient(t, srv.URL)
	out, err := client.GenerateJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if out["background"] != "ten years in sales" {
		t.Fatalf("decoded content: got %v", out)
	}
}

func TestGenerateJSONStripsMarkdownFence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse("```json\n{\"ok\":true}\n```"))
	}))
	defer srv.Close()

	client := newTestGroqClient(t, srv.URL)
	out, err := client.GenerateJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if out["ok"] != true {
		t.Fatalf("decoded content: got %v", out)
	}
}

func TestGenerateTextRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse("hello"))
	}))
	defer srv.Close()

	client := newTestGroqClient(t, srv.URL)
	text, err := client.GenerateText(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "hello" {
		t.Fatalf("text: want=hello got=%s", text)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls: want=2 got=%d", got)
	}
}

func TestGenerateTextDoesNotRetryClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestGroqClient(t, srv.URL)
	if _, err := client.GenerateText(context.Background(), "system", "user"); err == nil {
		t.Fatalf("want error on 400")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls: want=1 got=%d", got)
	}
}
