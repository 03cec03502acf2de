package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	SetFlash(rec, req, "success", "操作成功")

	// 带着cookie发起下一个请求
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}

	rec2 := httptest.NewRecorder()
	flashes := PopFlashes(rec2, next)

	if len(flashes) != 1 {
		t.Fatalf("expected 1 flash, got %d", len(flashes))
	}
	if flashes[0].Category != "success" || flashes[0].Message != "操作成功" {
		t.Errorf("unexpected flash: %+v", flashes[0])
	}

	// Pop后cookie被清除
	cleared := false
	for _, c := range rec2.Result().Cookies() {
		if c.Name == flashCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("flash cookie should be cleared after pop")
	}
}

func TestPopFlashes_NoCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if got := PopFlashes(rec, req); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestReadFlashes_CorruptCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: "not-base64!!"})

	if got := readFlashes(req); got != nil {
		t.Errorf("expected nil for corrupt cookie, got %+v", got)
	}
}
