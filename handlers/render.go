package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"cv_optimizer/config"
	"cv_optimizer/logger"
	"cv_optimizer/models"
)

// 页面模板集合，InitTemplates成功后只读
var templates *template.Template

// PageData 所有页面共用的数据结构
type PageData struct {
	Title          string
	Flashes        []Flash
	JobDescription string
	KeywordsHTML   []KeywordBadge
	OriginalCV     string
	OptimizedCV    template.HTML
	CoverLetter    string
	Feedback       string
	AnalysisID     int64
	Analyses       []models.CVAnalysis
	Optimizations  []models.Optimization
}

// KeywordBadge 关键词徽章的展示数据
type KeywordBadge struct {
	Text     string
	Category string
	Weight   float64
}

// InitTemplates 解析模板目录下的全部页面模板
func InitTemplates(cfg *config.Config) error {
	pattern := filepath.Join(cfg.Web.TemplatesDir, "*.html")
	t, err := template.ParseGlob(pattern)
	if err != nil {
		return fmt.Errorf("解析模板失败: %w", err)
	}
	templates = t
	logger.Info("页面模板加载完成", "dir", cfg.Web.TemplatesDir)
	return nil
}

// renderPage 渲染指定页面模板。先渲染到缓冲区，
// 模板出错时还没有写入响应头，可以完整地返回500
func renderPage(w http.ResponseWriter, status int, name string, data *PageData) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("渲染页面失败", "template", name, "error", err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// toBadges 把关键词集合转成展示用的徽章列表
func toBadges(keywords []models.Keyword) []KeywordBadge {
	badges := make([]KeywordBadge, 0, len(keywords))
	for _, kw := range keywords {
		badges = append(badges, KeywordBadge{Text: kw.Text, Category: kw.Category, Weight: kw.Weight})
	}
	return badges
}
