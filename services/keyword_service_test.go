package services

import (
	"context"
	"net/http"
	"testing"
)

const keywordJSON = "```json\n" + `{
  "technical_skills": [
    {"keyword": "Golang", "weight": 5},
    {"keyword": "MySQL", "weight": 4},
    {"keyword": "golang", "weight": 3}
  ],
  "soft_skills": [
    {"keyword": "沟通能力", "weight": 3}
  ],
  "tools": [
    {"keyword": "Docker", "weight": 0},
    {"keyword": "", "weight": 2}
  ]
}` + "\n```"

func TestExtractKeywords_Success(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, keywordJSON)
	cfg := newTestConfig(srv.URL)

	set, err := ExtractKeywords(context.Background(), cfg, "招聘后端工程师，要求熟悉Golang和MySQL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 忽略大小写去重，空关键词被丢弃
	if got := len(set.Categories["technical_skills"]); got != 2 {
		t.Errorf("technical_skills count = %d, want 2", got)
	}
	if got := len(set.Categories["tools"]); got != 1 {
		t.Errorf("tools count = %d, want 1", got)
	}

	// 超出范围的权重被收敛到1-5
	for _, kw := range set.Categories["tools"] {
		if kw.Weight < 1 || kw.Weight > 5 {
			t.Errorf("weight %v out of range", kw.Weight)
		}
	}

	// Labels按权重降序
	labels := set.Labels()
	if len(labels) == 0 || labels[0] != "Golang" {
		t.Errorf("labels[0] = %v, want Golang first", labels)
	}
}

func TestExtractKeywords_EmptyJobDescription(t *testing.T) {
	cfg := newTestConfig("http://localhost:1")
	if _, err := ExtractKeywords(context.Background(), cfg, "   "); err == nil {
		t.Fatal("expected error for empty job description")
	}
}

func TestExtractKeywords_InvalidJSON(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, "抱歉，我无法解析这个职位描述")
	cfg := newTestConfig(srv.URL)

	if _, err := ExtractKeywords(context.Background(), cfg, "职位描述"); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestExtractKeywords_NoKeywords(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, `{"technical_skills": []}`)
	cfg := newTestConfig(srv.URL)

	if _, err := ExtractKeywords(context.Background(), cfg, "职位描述"); err == nil {
		t.Fatal("expected error when no keywords extracted")
	}
}
