package services

import (
	"context"
	"strings"
	"sync"

	"cv_optimizer/config"
	"cv_optimizer/logger"
	"cv_optimizer/models"
	"cv_optimizer/utils"
)

// 各分类维度的默认值，LLM调用失败或返回无效答案时使用
const (
	DefaultSeniority = "mid"
	DefaultIndustry  = "general"
	DefaultJobType   = "office"
	DefaultRole      = "specialist"
)

// 分类答案的封闭候选集
var (
	seniorityLevels = []string{"junior", "mid", "senior"}
	industryLabels  = []string{"it", "finance", "marketing", "sales", "engineering", "healthcare", "education", "logistics", "manufacturing", "hr", "legal", "general"}
	jobTypeLabels   = []string{"office", "physical", "driver", "trade", "service", "remote"}
)

// DetectJobContext 并发执行四个分类调用，任何一路失败都用默认值兜底。
// 职位描述为空时跳过行业和岗位类型判断，直接用默认值。
func DetectJobContext(ctx context.Context, cfg *config.Config, cvText, jobDescription string) models.JobContext {
	result := models.JobContext{
		Seniority:    DefaultSeniority,
		Industry:     DefaultIndustry,
		JobType:      DefaultJobType,
		SpecificRole: DefaultRole,
	}

	concurrency := cfg.LLM.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	type detection struct {
		name   string
		detect func() (string, error)
		assign func(string)
	}

	detections := []detection{
		{
			name:   "seniority",
			detect: func() (string, error) { return detectSeniority(ctx, cfg, cvText, jobDescription) },
			assign: func(v string) { result.Seniority = v },
		},
	}

	if strings.TrimSpace(jobDescription) != "" {
		detections = append(detections,
			detection{
				name:   "industry",
				detect: func() (string, error) { return detectIndustry(ctx, cfg, jobDescription) },
				assign: func(v string) { result.Industry = v },
			},
			detection{
				name:   "job_type",
				detect: func() (string, error) { return detectJobType(ctx, cfg, jobDescription) },
				assign: func(v string) { result.JobType = v },
			},
			detection{
				name:   "specific_role",
				detect: func() (string, error) { return detectSpecificRole(ctx, cfg, jobDescription) },
				assign: func(v string) { result.SpecificRole = v },
			},
		)
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)
	var mu sync.Mutex

	for _, d := range detections {
		wg.Add(1)
		semaphore <- struct{}{} // acquire semaphore

		go func(d detection) {
			defer wg.Done()
			defer func() { <-semaphore }() // release semaphore

			value, err := d.detect()
			if err != nil {
				logger.Warn("上下文分类失败，使用默认值", "dimension", d.name, "error", err)
				return
			}
			mu.Lock()
			d.assign(value)
			mu.Unlock()
		}(d)
	}

	wg.Wait()

	logger.Info("职位上下文识别完成",
		"seniority", result.Seniority,
		"industry", result.Industry,
		"job_type", result.JobType,
		"specific_role", result.SpecificRole)

	return result
}

// detectSeniority 判断候选人的资历级别
func detectSeniority(ctx context.Context, cfg *config.Config, cvText, jobDescription string) (string, error) {
	text := utils.TruncateText(cvText, 3000)
	if strings.TrimSpace(text) == "" {
		text = utils.TruncateText(jobDescription, 3000)
	}

	prompt := "根据以下内容判断候选人的资历级别。只回答一个词：junior、mid 或 senior。\n\n" + text

	answer, err := SendChatRequest(ctx, cfg, prompt, 10)
	if err != nil {
		return "", err
	}

	return normalizeAnswer(answer, seniorityLevels, DefaultSeniority), nil
}

// detectIndustry 判断职位所属行业
func detectIndustry(ctx context.Context, cfg *config.Config, jobDescription string) (string, error) {
	prompt := "根据以下职位描述判断所属行业。只回答以下之一：" +
		strings.Join(industryLabels, "、") + "。\n\n" +
		utils.TruncateText(jobDescription, 3000)

	answer, err := SendChatRequest(ctx, cfg, prompt, 10)
	if err != nil {
		return "", err
	}

	return normalizeAnswer(answer, industryLabels, DefaultIndustry), nil
}

// detectJobType 判断岗位类型（办公、体力、驾驶等）
func detectJobType(ctx context.Context, cfg *config.Config, jobDescription string) (string, error) {
	prompt := "根据以下职位描述判断岗位类型。只回答以下之一：" +
		strings.Join(jobTypeLabels, "、") + "。\n\n" +
		utils.TruncateText(jobDescription, 3000)

	answer, err := SendChatRequest(ctx, cfg, prompt, 10)
	if err != nil {
		return "", err
	}

	return normalizeAnswer(answer, jobTypeLabels, DefaultJobType), nil
}

// detectSpecificRole 提取具体职位名称，答案不受封闭候选集约束
func detectSpecificRole(ctx context.Context, cfg *config.Config, jobDescription string) (string, error) {
	prompt := "从以下职位描述中提取具体的职位名称，用1-3个词回答，不要任何解释。\n\n" +
		utils.TruncateText(jobDescription, 3000)

	answer, err := SendChatRequest(ctx, cfg, prompt, 20)
	if err != nil {
		return "", err
	}

	role := cleanAnswer(answer)
	if role == "" || len(role) > 60 {
		logger.Warn("职位名称答案无效，使用默认值", "answer", answer)
		return DefaultRole, nil
	}
	return role, nil
}

// normalizeAnswer 清洗LLM答案并校验是否在候选集内，不在则返回默认值
func normalizeAnswer(answer string, allowed []string, fallback string) string {
	cleaned := strings.ToLower(cleanAnswer(answer))
	for _, label := range allowed {
		if cleaned == label {
			return label
		}
	}
	// 模型偶尔会带上标点或前缀，再做一次包含匹配
	for _, label := range allowed {
		if strings.Contains(cleaned, label) {
			return label
		}
	}
	logger.Warn("分类答案不在候选集内，使用默认值", "answer", answer, "fallback", fallback)
	return fallback
}

// cleanAnswer 去掉答案两端的引号、句号和空白
func cleanAnswer(answer string) string {
	return strings.Trim(strings.TrimSpace(answer), "\"'`.,:;!?。，")
}
