package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"cv_optimizer/config"
	"cv_optimizer/logger"
	"cv_optimizer/models"
	"cv_optimizer/repository"
	"cv_optimizer/services"
	"cv_optimizer/utils"
)

// IndexHandler 首页：职位描述和CV输入表单
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "index.html", &PageData{
		Title:   "CV优化助手",
		Flashes: PopFlashes(w, r),
	})
}

// AnalyzeHandler 分析职位描述：提取关键词，可选上传CV文件。
// 成功后渲染关键词页面，用户在该页面提交CV文本进入优化环节。
func AnalyzeHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	maxBytes := int64(cfg.Upload.MaxSizeMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1024)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if isBodyTooLarge(err) {
			SetFlash(w, r, "danger", models.CodeMessages[models.CodeFileTooLarge])
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		// 没有文件时表单可能不是multipart，继续按普通表单解析
		if err := r.ParseForm(); err != nil {
			SetFlash(w, r, "danger", models.CodeMessages[models.CodeInvalidParams])
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	jobDescription := strings.TrimSpace(r.FormValue("job_description"))
	if jobDescription == "" {
		SetFlash(w, r, "danger", models.CodeMessages[models.CodeEmptyJobDesc])
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := &PageData{
		Title:          "关键词分析",
		JobDescription: jobDescription,
	}

	// 可选的CV文件，上传后提取文本并记录分析结果
	if file, header, err := r.FormFile("cv_file"); err == nil {
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			SetFlash(w, r, "danger", models.CodeMessages[models.CodeServerError])
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		analysis, err := services.AnalyzeUpload(r.Context(), cfg, header.Filename, content)
		if err != nil {
			SetFlash(w, r, "danger", uploadErrorMessage(err))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		data.AnalysisID = analysis.ID
		data.OriginalCV = analysis.ExtractedText
		data.Flashes = append(data.Flashes, Flash{Category: "info", Message: "已从 " + analysis.OriginalFilename + " 中提取CV文本"})
	}

	keywords, err := services.ExtractKeywords(r.Context(), cfg, jobDescription)
	if err != nil {
		SetFlash(w, r, "danger", llmErrorMessage(err, models.CodeKeywordGenError))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data.KeywordsHTML = toBadges(keywords.Flatten())

	data.Flashes = append(PopFlashes(w, r), data.Flashes...)
	renderPage(w, http.StatusOK, "keywords.html", data)
}

// OptimizeHandler 优化CV：cv_text为必填，为空时带flash消息重定向回首页
func OptimizeHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	if err := r.ParseForm(); err != nil {
		SetFlash(w, r, "danger", models.CodeMessages[models.CodeInvalidParams])
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	cvText := strings.TrimSpace(r.FormValue("cv_text"))
	jobDescription := strings.TrimSpace(r.FormValue("job_description"))
	analysisID := parseAnalysisID(r.FormValue("analysis_id"))

	if cvText == "" {
		SetFlash(w, r, "danger", models.CodeMessages[models.CodeEmptyCV])
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	opt, err := services.OptimizeCV(r.Context(), cfg, cvText, jobDescription, analysisID)
	if err != nil {
		SetFlash(w, r, "danger", llmErrorMessage(err, models.CodeOptimizeError))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	// 高亮在渲染前对优化结果显式执行，任何异常都只影响高亮效果本身
	labels := keywordLabels(opt.Keywords)
	optimizedHTML := utils.SafeHighlightHTML(opt.OptimizedCV, labels, utils.HighlightOptions{
		MinKeywordLength: cfg.Highlight.MinKeywordLength,
		WholeWord:        cfg.Highlight.WholeWord,
	})

	renderPage(w, http.StatusOK, "result.html", &PageData{
		Title:          "优化结果",
		Flashes:        append(PopFlashes(w, r), Flash{Category: "success", Message: "CV优化完成"}),
		JobDescription: opt.JobDescription,
		KeywordsHTML:   toBadges(opt.Keywords),
		OriginalCV:     opt.OriginalCV,
		OptimizedCV:    optimizedHTML,
		AnalysisID:     analysisID,
	})
}

// HistoryHandler 历史记录页：最近的分析和优化各取10条
func HistoryHandler(w http.ResponseWriter, r *http.Request) {
	analyses, err := repository.ListRecentAnalyses(10)
	if err != nil {
		logger.Error("查询分析历史失败", "error", err)
	}
	optimizations, err := repository.ListRecentOptimizations(10)
	if err != nil {
		logger.Error("查询优化历史失败", "error", err)
	}

	renderPage(w, http.StatusOK, "history.html", &PageData{
		Title:         "历史记录",
		Flashes:       PopFlashes(w, r),
		Analyses:      analyses,
		Optimizations: optimizations,
	})
}

// NotFoundHandler 404页面
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{
			"path": r.URL.Path,
		})
		return
	}
	SetFlash(w, r, "warning", "页面不存在")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func parseAnalysisID(value string) int64 {
	if value == "" {
		return 0
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func keywordLabels(keywords []models.Keyword) []string {
	labels := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		labels = append(labels, kw.Text)
	}
	return labels
}

// uploadErrorMessage 把文档处理错误映射为用户可读的提示
func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrFileTooLarge):
		return models.CodeMessages[models.CodeFileTooLarge]
	case errors.Is(err, services.ErrUnsupportedType):
		return models.CodeMessages[models.CodeUnsupportedFile]
	case errors.Is(err, services.ErrEmptyDocument):
		return models.CodeMessages[models.CodeEmptyDocument]
	default:
		return models.CodeMessages[models.CodeServerError]
	}
}

// llmErrorMessage LLM调用错误映射，限流单独提示
func llmErrorMessage(err error, fallbackCode int) string {
	if errors.Is(err, services.ErrRateLimited) {
		return models.CodeMessages[models.CodeLLMRateLimited]
	}
	return models.CodeMessages[fallbackCode]
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
