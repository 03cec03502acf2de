package handlers

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func withTemplates(t *testing.T, set *template.Template) {
	t.Helper()
	saved := templates
	templates = set
	t.Cleanup(func() { templates = saved })
}

func TestRenderPage_Success(t *testing.T) {
	withTemplates(t, template.Must(template.New("page.html").Parse(`<h1>{{.Title}}</h1>`)))

	rec := httptest.NewRecorder()
	renderPage(rec, http.StatusOK, "page.html", &PageData{Title: "测试页"})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/html") {
		t.Errorf("Content-Type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "<h1>测试页</h1>") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRenderPage_TemplateErrorReturns500(t *testing.T) {
	// 执行期才会失败的模板：引用不存在的字段
	withTemplates(t, template.Must(template.New("broken.html").Parse(`前半段{{.Bogus}}后半段`)))

	rec := httptest.NewRecorder()
	renderPage(rec, http.StatusOK, "broken.html", &PageData{})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	// 渲染失败时不应泄露渲染到一半的页面内容
	if strings.Contains(rec.Body.String(), "前半段") {
		t.Errorf("partial page leaked into response: %q", rec.Body.String())
	}
}
