package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"cv_optimizer/config"
)

func newHandlerTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Upload.MaxSizeMB = 5
	cfg.Upload.AllowedExts = []string{".pdf", ".docx", ".txt"}
	cfg.Highlight.MinKeywordLength = 3
	return cfg
}

// flashMessages 从响应的Set-Cookie中读出flash消息
func flashMessages(t *testing.T, rec *httptest.ResponseRecorder) []Flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return readFlashes(req)
}

func TestOptimizeHandler_EmptyCVText(t *testing.T) {
	form := url.Values{}
	form.Set("cv_text", "   ")
	form.Set("job_description", "职位描述")

	req := httptest.NewRequest(http.MethodPost, "/optimize", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	OptimizeHandler(rec, req, newHandlerTestConfig())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Errorf("redirect location = %q, want /", got)
	}

	flashes := flashMessages(t, rec)
	if len(flashes) != 1 {
		t.Fatalf("expected 1 flash message, got %d", len(flashes))
	}
	if flashes[0].Category != "danger" {
		t.Errorf("flash category = %q, want danger", flashes[0].Category)
	}
	if !strings.Contains(flashes[0].Message, "CV内容") {
		t.Errorf("flash message = %q", flashes[0].Message)
	}
}

func TestAnalyzeHandler_EmptyJobDescription(t *testing.T) {
	form := url.Values{}
	form.Set("job_description", "")

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	AnalyzeHandler(rec, req, newHandlerTestConfig())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	flashes := flashMessages(t, rec)
	if len(flashes) != 1 || flashes[0].Category != "danger" {
		t.Fatalf("expected danger flash, got %+v", flashes)
	}
}

func TestNotFoundHandler_APIPathReturnsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()

	NotFoundHandler(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Errorf("Content-Type = %q, want JSON", got)
	}
	if !strings.Contains(rec.Body.String(), `"code"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestNotFoundHandler_PageRedirectsHome(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/no-such-page", nil)
	rec := httptest.NewRecorder()

	NotFoundHandler(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Errorf("redirect location = %q, want /", got)
	}
}

func TestParseAnalysisID(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"42", 42},
		{"-1", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		if got := parseAnalysisID(tt.in); got != tt.want {
			t.Errorf("parseAnalysisID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
