package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateMultiVersions_Success(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, "改写后的CV")
	cfg := newTestConfig(srv.URL)

	versions, err := GenerateMultiVersions(context.Background(), cfg, "CV原文", []string{"后端工程师", "数据分析师"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("len = %d, want 2", len(versions))
	}
	// 结果按请求顺序返回
	if versions[0].Role != "后端工程师" || versions[1].Role != "数据分析师" {
		t.Errorf("unexpected role order: %+v", versions)
	}
	for _, v := range versions {
		if v.Content != "改写后的CV" {
			t.Errorf("version %q content = %q", v.Role, v.Content)
		}
	}
}

func TestGenerateMultiVersions_EmptyInputs(t *testing.T) {
	cfg := newTestConfig("http://localhost:1")

	if _, err := GenerateMultiVersions(context.Background(), cfg, "  ", []string{"角色"}); err == nil {
		t.Error("expected error for empty cv text")
	}
	if _, err := GenerateMultiVersions(context.Background(), cfg, "CV原文", []string{" ", ""}); err == nil {
		t.Error("expected error for empty roles")
	}
}

func TestGenerateMultiVersions_RoleCapAndDedupe(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "版本"}}]}`))
	}))
	t.Cleanup(srv.Close)
	cfg := newTestConfig(srv.URL)

	roles := []string{"a1", "a1", "b2", "c3", "d4", "e5", "f6", "g7"}
	versions, err := GenerateMultiVersions(context.Background(), cfg, "CV原文", roles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 去重后截断到上限，每个方向一次LLM调用
	if len(versions) != maxVersionRoles {
		t.Errorf("len = %d, want %d", len(versions), maxVersionRoles)
	}
	if calls != maxVersionRoles {
		t.Errorf("LLM calls = %d, want %d", calls, maxVersionRoles)
	}
}

func TestGenerateMultiVersions_PartialFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "版本"}}]}`))
	}))
	t.Cleanup(srv.Close)
	cfg := newTestConfig(srv.URL)
	cfg.LLM.MaxConcurrency = 1

	versions, err := GenerateMultiVersions(context.Background(), cfg, "CV原文", []string{"失败方向", "成功方向"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) != 1 || versions[0].Role != "成功方向" {
		t.Errorf("expected only the successful role, got %+v", versions)
	}
}

func TestGenerateMultiVersions_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	cfg := newTestConfig(srv.URL)

	if _, err := GenerateMultiVersions(context.Background(), cfg, "CV原文", []string{"a1", "b2"}); err == nil {
		t.Fatal("expected error when all roles fail")
	}
}
