package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"cv_optimizer/logger"
)

const flashCookieName = "cv_flash"

// Flash 一次性提示消息，渲染后即清除
type Flash struct {
	Category string `json:"category"` // success / info / warning / danger
	Message  string `json:"message"`
}

// SetFlash 把提示消息追加到flash cookie中，下一次页面渲染时显示
func SetFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	flashes := readFlashes(r)
	flashes = append(flashes, Flash{Category: category, Message: message})

	data, err := json.Marshal(flashes)
	if err != nil {
		logger.Warn("序列化flash消息失败", "error", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		MaxAge:   300,
	})
}

// PopFlashes 读取并清除全部flash消息
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) == 0 {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	data, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
