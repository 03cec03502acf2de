package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"cv_optimizer/config"
	_ "cv_optimizer/docs" // 导入 swagger 文档
	"cv_optimizer/models"
	"cv_optimizer/repository"
	"cv_optimizer/services"
	"cv_optimizer/utils"
)

// ExtractKeywordsAPIHandler godoc
// @Summary 从职位描述中提取关键词
// @Description 分析职位描述，按类别返回带权重的关键词列表
// @Tags 关键词
// @Accept json
// @Produce json
// @Param request body models.KeywordRequest true "职位描述"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/keywords [post]
func ExtractKeywordsAPIHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.KeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{})
		return
	}
	if !utils.ValidateRequiredText(w, req.JobDescription, "job_description", models.CodeEmptyJobDesc) {
		return
	}

	keywords, err := services.ExtractKeywords(r.Context(), cfg, req.JobDescription)
	if err != nil {
		writeLLMError(w, err, models.CodeKeywordGenError)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"categories": keywords.Categories,
		"keywords":   keywords.Flatten(),
	})
}

// OptimizeAPIHandler godoc
// @Summary 针对目标职位优化CV
// @Description 识别职位上下文、提取关键词并生成优化后的CV文本
// @Tags 优化
// @Accept json
// @Produce json
// @Param request body models.OptimizeRequest true "CV文本和职位描述"
// @Success 200 {object} models.OptimizeResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/optimize [post]
func OptimizeAPIHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{})
		return
	}
	if !utils.ValidateRequiredText(w, req.CVText, "cv_text", models.CodeEmptyCV) {
		return
	}

	opt, err := services.OptimizeCV(r.Context(), cfg, req.CVText, req.JobDescription, 0)
	if err != nil {
		writeLLMError(w, err, models.CodeOptimizeError)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"optimization_id": opt.ID,
		"optimized_cv":    opt.OptimizedCV,
		"keywords":        opt.Keywords,
		"context": models.JobContext{
			Seniority:    opt.Seniority,
			Industry:     opt.Industry,
			JobType:      opt.JobType,
			SpecificRole: opt.SpecificRole,
		},
	})
}

// CoverLetterAPIHandler godoc
// @Summary 生成求职信
// @Description 根据CV和职位描述生成求职信
// @Tags 优化
// @Accept json
// @Produce json
// @Param request body models.CoverLetterRequest true "CV文本、职位描述和公司名称"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/cover-letter [post]
func CoverLetterAPIHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.CoverLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{})
		return
	}
	if !utils.ValidateRequiredText(w, req.CVText, "cv_text", models.CodeEmptyCV) {
		return
	}
	if !utils.ValidateRequiredText(w, req.JobDescription, "job_description", models.CodeEmptyJobDesc) {
		return
	}

	letter, err := services.GenerateCoverLetter(r.Context(), cfg, req.CVText, req.JobDescription, req.CompanyName)
	if err != nil {
		writeLLMError(w, err, models.CodeLLMAPIError)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"cover_letter": letter,
	})
}

// FeedbackAPIHandler godoc
// @Summary 招聘官视角点评CV
// @Description 以资深招聘官的视角给出CV的改进建议
// @Tags 优化
// @Accept json
// @Produce json
// @Param request body models.FeedbackRequest true "CV文本和可选的职位描述"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/feedback [post]
func FeedbackAPIHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{})
		return
	}
	if !utils.ValidateRequiredText(w, req.CVText, "cv_text", models.CodeEmptyCV) {
		return
	}

	feedback, err := services.GenerateRecruiterFeedback(r.Context(), cfg, req.CVText, req.JobDescription)
	if err != nil {
		writeLLMError(w, err, models.CodeLLMAPIError)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"feedback": feedback,
	})
}

// TranslateAPIHandler godoc
// @Summary 把CV翻译成英文
// @Description 保留结构和事实信息，把整份CV翻译成职场英语
// @Tags 优化
// @Accept json
// @Produce json
// @Param request body models.FeedbackRequest true "CV文本"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/translate [post]
func TranslateAPIHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{})
		return
	}
	if !utils.ValidateRequiredText(w, req.CVText, "cv_text", models.CodeEmptyCV) {
		return
	}

	translated, err := services.TranslateToEnglish(r.Context(), cfg, req.CVText)
	if err != nil {
		writeLLMError(w, err, models.CodeLLMAPIError)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"translated_cv": translated,
	})
}

// MultiVersionsAPIHandler godoc
// @Summary 生成多个职位方向的CV版本
// @Description 针对每个目标职位方向各改写一份CV，最多5个方向
// @Tags 优化
// @Accept json
// @Produce json
// @Param request body models.MultiVersionRequest true "CV文本和目标职位方向列表"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/multi-versions [post]
func MultiVersionsAPIHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.MultiVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{})
		return
	}
	if !utils.ValidateRequiredText(w, req.CVText, "cv_text", models.CodeEmptyCV) {
		return
	}
	if len(req.Roles) == 0 {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{
			"param": "roles",
		})
		return
	}

	versions, err := services.GenerateMultiVersions(r.Context(), cfg, req.CVText, req.Roles)
	if err != nil {
		writeLLMError(w, err, models.CodeLLMAPIError)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"versions": versions,
		"count":    len(versions),
	})
}

// CareerSuggestionAPIHandler godoc
// @Summary 推荐转行方向
// @Description 分析CV中的可迁移技能，推荐值得考虑的转行方向
// @Tags 优化
// @Accept json
// @Produce json
// @Param request body models.FeedbackRequest true "CV文本"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/career-suggestions [post]
func CareerSuggestionAPIHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{})
		return
	}
	if !utils.ValidateRequiredText(w, req.CVText, "cv_text", models.CodeEmptyCV) {
		return
	}

	suggestions, err := services.SuggestAlternativeCareers(r.Context(), cfg, req.CVText)
	if err != nil {
		writeLLMError(w, err, models.CodeLLMAPIError)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// HistoryAPIHandler godoc
// @Summary 查询优化历史
// @Description 返回最近10条CV优化记录
// @Tags 历史
// @Produce json
// @Success 200 {object} models.APIResponse "成功"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/history [get]
func HistoryAPIHandler(w http.ResponseWriter, r *http.Request) {
	optimizations, err := repository.ListRecentOptimizations(10)
	if err != nil {
		utils.HandleServiceError(w, err, models.CodeDatabaseError)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"optimizations": optimizations,
		"count":         len(optimizations),
	})
}

// GetOptimizationAPIHandler godoc
// @Summary 查询单条优化记录
// @Description 根据ID返回优化记录详情
// @Tags 历史
// @Produce json
// @Param id path int true "优化记录ID"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 404 {object} models.APIResponse "记录不存在"
// @Router /api/optimization/{id} [get]
func GetOptimizationAPIHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{})
		return
	}

	opt, err := repository.GetOptimization(id)
	if err != nil {
		utils.HandleServiceError(w, err, models.CodeAnalysisNotFound)
		return
	}

	utils.WriteSuccessResponse(w, opt)
}

// writeLLMError LLM调用失败的统一响应，限流返回单独的错误码
func writeLLMError(w http.ResponseWriter, err error, fallbackCode int) {
	if errors.Is(err, services.ErrRateLimited) {
		utils.WriteErrorResponse(w, models.CodeLLMRateLimited, map[string]interface{}{})
		return
	}
	utils.WriteCustomErrorResponse(w, fallbackCode, err.Error(), map[string]interface{}{})
}

func RegisterRoutes(r *chi.Mux, cfg *config.Config) {
	// Swagger 文档
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // Swagger JSON 的 URL
	))

	// 页面路由
	r.Get("/", IndexHandler)
	r.Post("/analyze", func(w http.ResponseWriter, r *http.Request) {
		AnalyzeHandler(w, r, cfg)
	})
	r.Post("/optimize", func(w http.ResponseWriter, r *http.Request) {
		OptimizeHandler(w, r, cfg)
	})
	r.Get("/history", HistoryHandler)

	// JSON API
	r.Post("/api/keywords", func(w http.ResponseWriter, r *http.Request) {
		ExtractKeywordsAPIHandler(w, r, cfg)
	})
	r.Post("/api/optimize", func(w http.ResponseWriter, r *http.Request) {
		OptimizeAPIHandler(w, r, cfg)
	})
	r.Post("/api/cover-letter", func(w http.ResponseWriter, r *http.Request) {
		CoverLetterAPIHandler(w, r, cfg)
	})
	r.Post("/api/feedback", func(w http.ResponseWriter, r *http.Request) {
		FeedbackAPIHandler(w, r, cfg)
	})
	r.Post("/api/translate", func(w http.ResponseWriter, r *http.Request) {
		TranslateAPIHandler(w, r, cfg)
	})
	r.Post("/api/multi-versions", func(w http.ResponseWriter, r *http.Request) {
		MultiVersionsAPIHandler(w, r, cfg)
	})
	r.Post("/api/career-suggestions", func(w http.ResponseWriter, r *http.Request) {
		CareerSuggestionAPIHandler(w, r, cfg)
	})
	r.Get("/api/history", HistoryAPIHandler)
	r.Get("/api/optimization/{id}", GetOptimizationAPIHandler)

	r.NotFound(NotFoundHandler)
}
