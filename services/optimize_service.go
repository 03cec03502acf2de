package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cv_optimizer/config"
	"cv_optimizer/logger"
	"cv_optimizer/models"
	"cv_optimizer/repository"
	"cv_optimizer/utils"
)

// OptimizeCV 执行完整的优化流程：上下文识别、关键词提取、LLM改写、落库。
// 上下文识别和关键词提取失败都不会中断流程，改写本身失败才返回错误。
// analysisID大于0时把优化记录关联到对应的分析记录。
func OptimizeCV(ctx context.Context, cfg *config.Config, cvText, jobDescription string, analysisID int64) (*models.Optimization, error) {
	if strings.TrimSpace(cvText) == "" {
		return nil, fmt.Errorf("CV内容为空")
	}

	jobCtx := DetectJobContext(ctx, cfg, cvText, jobDescription)

	keywords, err := ExtractKeywords(ctx, cfg, jobDescription)
	if err != nil {
		logger.Warn("关键词提取失败，继续优化流程", "error", err)
		keywords = nil
	}

	prompt := BuildOptimizePrompt(cfg, jobCtx, keywords, cvText, jobDescription)

	optimized, err := SendChatRequest(ctx, cfg, prompt, cfg.OpenRouter.MaxTokens)
	if err != nil {
		return nil, err
	}
	optimized = strings.TrimSpace(optimized)
	if optimized == "" {
		return nil, fmt.Errorf("优化结果为空")
	}

	opt := &models.Optimization{
		AnalysisID:     analysisID,
		JobDescription: jobDescription,
		OriginalCV:     cvText,
		OptimizedCV:    optimized,
		Keywords:       keywords.Flatten(),
		Seniority:      jobCtx.Seniority,
		Industry:       jobCtx.Industry,
		JobType:        jobCtx.JobType,
		SpecificRole:   jobCtx.SpecificRole,
	}

	// 落库失败只记日志，不影响向用户返回结果
	id, err := repository.SaveOptimization(opt)
	if err != nil {
		logger.Error("保存优化记录失败", "error", err)
	} else {
		opt.ID = id
	}

	logger.Info("CV优化完成",
		"optimization_id", opt.ID,
		"cv_length", len(cvText),
		"optimized_length", len(optimized),
		"keyword_count", len(opt.Keywords))

	return opt, nil
}

// GenerateCoverLetter 根据CV和职位描述生成求职信
func GenerateCoverLetter(ctx context.Context, cfg *config.Config, cvText, jobDescription, companyName string) (string, error) {
	if strings.TrimSpace(cvText) == "" {
		return "", fmt.Errorf("CV内容为空")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return "", fmt.Errorf("职位描述为空")
	}

	prompt := BuildCoverLetterPrompt(cfg, cvText, jobDescription, companyName)
	return SendChatRequest(ctx, cfg, prompt, 1200)
}

// GenerateRecruiterFeedback 以招聘官视角点评CV
func GenerateRecruiterFeedback(ctx context.Context, cfg *config.Config, cvText, jobDescription string) (string, error) {
	if strings.TrimSpace(cvText) == "" {
		return "", fmt.Errorf("CV内容为空")
	}

	prompt := BuildFeedbackPrompt(cfg, cvText, jobDescription)
	return SendChatRequest(ctx, cfg, prompt, 1500)
}

// TranslateToEnglish 把整份CV翻译成英文
func TranslateToEnglish(ctx context.Context, cfg *config.Config, cvText string) (string, error) {
	if strings.TrimSpace(cvText) == "" {
		return "", fmt.Errorf("CV内容为空")
	}

	prompt := BuildTranslatePrompt(cfg, cvText)
	return SendChatRequest(ctx, cfg, prompt, cfg.OpenRouter.MaxTokens)
}

// 一次请求允许生成的CV版本数上限
const maxVersionRoles = 5

// GenerateMultiVersions 为多个目标职位方向各生成一份CV变体。
// 各方向并发改写，单个方向失败只跳过该方向，全部失败才返回错误。
func GenerateMultiVersions(ctx context.Context, cfg *config.Config, cvText string, roles []string) ([]models.CVVersion, error) {
	if strings.TrimSpace(cvText) == "" {
		return nil, fmt.Errorf("CV内容为空")
	}

	cleaned := utils.DeduplicateSlice(roles)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("目标职位方向为空")
	}
	if len(cleaned) > maxVersionRoles {
		cleaned = cleaned[:maxVersionRoles]
	}

	concurrency := cfg.LLM.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	versions := make([]models.CVVersion, len(cleaned))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, role := range cleaned {
		wg.Add(1)
		semaphore <- struct{}{} // acquire semaphore

		go func(idx int, targetRole string) {
			defer wg.Done()
			defer func() { <-semaphore }() // release semaphore

			prompt := BuildRoleVersionPrompt(cfg, cvText, targetRole)
			content, err := SendChatRequest(ctx, cfg, prompt, cfg.OpenRouter.MaxTokens)
			if err != nil {
				logger.Warn("生成CV版本失败", "role", targetRole, "error", err)
				return
			}
			versions[idx] = models.CVVersion{Role: targetRole, Content: strings.TrimSpace(content)}
		}(i, role)
	}

	wg.Wait()

	// 按请求顺序收集成功的版本
	result := make([]models.CVVersion, 0, len(versions))
	for _, v := range versions {
		if v.Content != "" {
			result = append(result, v)
		}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("所有职位方向的CV版本都生成失败")
	}

	logger.Info("多版本CV生成完成", "requested", len(cleaned), "generated", len(result))
	return result, nil
}

// SuggestAlternativeCareers 根据CV给出转行方向建议
func SuggestAlternativeCareers(ctx context.Context, cfg *config.Config, cvText string) (string, error) {
	if strings.TrimSpace(cvText) == "" {
		return "", fmt.Errorf("CV内容为空")
	}

	prompt := BuildCareerSuggestionPrompt(cfg, cvText)
	return SendChatRequest(ctx, cfg, prompt, 1500)
}
