package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{"精确命中", "senior", "senior"},
		{"大小写和空白", "  Senior \n", "senior"},
		{"带标点", `"junior".`, "junior"},
		{"包含匹配", "这个职位是mid级别", "mid"},
		{"无效答案用默认值", "expert", "mid"},
		{"空答案用默认值", "", "mid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeAnswer(tt.answer, seniorityLevels, DefaultSeniority)
			if got != tt.want {
				t.Errorf("normalizeAnswer(%q) = %q, want %q", tt.answer, got, tt.want)
			}
		})
	}
}

func TestDetectJobContext_Success(t *testing.T) {
	// 根据提示词内容区分四路调用
	srv := newChatServer(t, http.StatusOK, "senior")
	cfg := newTestConfig(srv.URL)

	result := DetectJobContext(context.Background(), cfg, "资深工程师的CV", "招聘高级工程师")

	if result.Seniority != "senior" {
		t.Errorf("Seniority = %q, want senior", result.Seniority)
	}
	// "senior"不在其他维度的候选集内，回落到默认值
	if result.Industry != DefaultIndustry {
		t.Errorf("Industry = %q, want default", result.Industry)
	}
	if result.JobType != DefaultJobType {
		t.Errorf("JobType = %q, want default", result.JobType)
	}
	if result.SpecificRole != "senior" {
		t.Errorf("SpecificRole = %q, want raw answer", result.SpecificRole)
	}
}

func TestDetectJobContext_AllCallsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	cfg := newTestConfig(srv.URL)

	result := DetectJobContext(context.Background(), cfg, "CV文本", "职位描述")

	if result.Seniority != DefaultSeniority {
		t.Errorf("Seniority = %q, want %q", result.Seniority, DefaultSeniority)
	}
	if result.Industry != DefaultIndustry {
		t.Errorf("Industry = %q, want %q", result.Industry, DefaultIndustry)
	}
	if result.JobType != DefaultJobType {
		t.Errorf("JobType = %q, want %q", result.JobType, DefaultJobType)
	}
	if result.SpecificRole != DefaultRole {
		t.Errorf("SpecificRole = %q, want %q", result.SpecificRole, DefaultRole)
	}
}

func TestDetectJobContext_EmptyJobDescription(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "junior"}}]}`))
	}))
	t.Cleanup(srv.Close)
	cfg := newTestConfig(srv.URL)

	result := DetectJobContext(context.Background(), cfg, "应届生CV", "")

	// 职位描述为空时只判断资历，其余维度不发请求
	if calls != 1 {
		t.Errorf("expected 1 LLM call, got %d", calls)
	}
	if result.Seniority != "junior" {
		t.Errorf("Seniority = %q, want junior", result.Seniority)
	}
	if result.Industry != DefaultIndustry || result.JobType != DefaultJobType || result.SpecificRole != DefaultRole {
		t.Errorf("expected defaults for other dimensions: %+v", result)
	}
}
