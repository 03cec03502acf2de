package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cv_optimizer/config"
)

// newTestConfig 指向假LLM服务器的最小配置
func newTestConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.OpenRouter.APIKey = "test-key"
	cfg.OpenRouter.Model = "test-model"
	cfg.OpenRouter.BaseURL = baseURL
	cfg.OpenRouter.MaxTokens = 500
	cfg.OpenRouter.MaxTextChars = 12000
	cfg.OpenRouter.RetryCount = 1
	cfg.OpenRouter.RetryDelay = 1
	cfg.OpenRouter.TimeoutSec = 5
	cfg.LLM.MaxConcurrency = 2
	return cfg
}

// newChatServer 返回固定回答的假chat completions服务器
func newChatServer(t *testing.T, statusCode int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendChatRequest_Success(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, "优化后的CV内容")
	cfg := newTestConfig(srv.URL)

	got, err := SendChatRequest(context.Background(), cfg, "测试提示词", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "优化后的CV内容" {
		t.Errorf("got %q", got)
	}
}

func TestSendChatRequest_ZeroRetryCountStillSends(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, "正常回答")
	cfg := newTestConfig(srv.URL)
	cfg.OpenRouter.RetryCount = 0

	got, err := SendChatRequest(context.Background(), cfg, "测试", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "正常回答" {
		t.Errorf("got %q", got)
	}
}

func TestSendChatRequest_ZeroRetryCountWrapsRealError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	cfg := newTestConfig(srv.URL)
	cfg.OpenRouter.RetryCount = 0
	cfg.OpenRouter.RetryDelay = 0

	_, err := SendChatRequest(context.Background(), cfg, "测试", 100)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls == 0 {
		t.Error("server was never called")
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("error should wrap the underlying failure: %v", err)
	}
}

func TestSendChatRequest_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	cfg := newTestConfig(srv.URL)

	_, err := SendChatRequest(context.Background(), cfg, "测试", 100)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestSendChatRequest_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": []}`))
	}))
	t.Cleanup(srv.Close)
	cfg := newTestConfig(srv.URL)

	_, err := SendChatRequest(context.Background(), cfg, "测试", 100)
	if err == nil {
		t.Fatal("expected error on empty choices")
	}
}

func TestSendChatRequest_NoAPIKey(t *testing.T) {
	cfg := newTestConfig("http://localhost:1")
	cfg.OpenRouter.APIKey = ""

	_, err := SendChatRequest(context.Background(), cfg, "测试", 100)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestSendChatRequest_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal"}`))
	}))
	t.Cleanup(srv.Close)
	cfg := newTestConfig(srv.URL)

	_, err := SendChatRequest(context.Background(), cfg, "测试", 100)
	if err == nil {
		t.Fatal("expected error on 5xx response")
	}
}

func TestSendChatRequest_SendsOpenRouterHeaders(t *testing.T) {
	var gotReferer, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	t.Cleanup(srv.Close)

	cfg := newTestConfig(srv.URL)
	cfg.OpenRouter.Referer = "http://localhost:8080"
	cfg.OpenRouter.Title = "CV Optimizer"

	if _, err := SendChatRequest(context.Background(), cfg, "测试", 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotReferer != "http://localhost:8080" {
		t.Errorf("HTTP-Referer = %q", gotReferer)
	}
	if gotTitle != "CV Optimizer" {
		t.Errorf("X-Title = %q", gotTitle)
	}
}
