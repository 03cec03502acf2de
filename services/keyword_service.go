package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cv_optimizer/config"
	"cv_optimizer/logger"
	"cv_optimizer/models"
	"cv_optimizer/utils"
)

// 关键词分类，顺序即页面展示顺序
var keywordCategories = []string{"technical_skills", "soft_skills", "domain_knowledge", "certifications", "tools"}

// ExtractKeywords 从职位描述中提取分类关键词。
// 要求LLM返回固定结构的JSON，解析失败直接报错，由调用方决定降级策略。
func ExtractKeywords(ctx context.Context, cfg *config.Config, jobDescription string) (*models.KeywordSet, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("职位描述为空")
	}

	prompt := buildKeywordPrompt(cfg, jobDescription)

	content, err := SendChatRequest(ctx, cfg, prompt, 1500)
	if err != nil {
		return nil, err
	}

	jsonText := utils.ExtractJSONFromText(content)
	if jsonText == "" {
		logger.Error("LLM响应中未找到JSON", "content_preview", utils.TruncateText(content, 200))
		return nil, fmt.Errorf("关键词响应中未找到JSON")
	}

	var raw map[string][]struct {
		Keyword string  `json:"keyword"`
		Weight  float64 `json:"weight"`
	}
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		logger.Error("解析关键词JSON失败", "error", err, "json_preview", utils.TruncateText(jsonText, 200))
		return nil, fmt.Errorf("解析关键词JSON失败: %w", err)
	}

	set := &models.KeywordSet{Categories: make(map[string][]models.Keyword)}
	seen := make(map[string]bool)
	total := 0

	for _, category := range keywordCategories {
		for _, item := range raw[category] {
			text := strings.TrimSpace(item.Keyword)
			if text == "" {
				continue
			}
			lower := strings.ToLower(text)
			if seen[lower] {
				continue
			}
			seen[lower] = true

			weight := item.Weight
			if weight < 1 {
				weight = 1
			}
			if weight > 5 {
				weight = 5
			}

			set.Categories[category] = append(set.Categories[category], models.Keyword{
				Text:     text,
				Category: category,
				Weight:   weight,
			})
			total++
		}
	}

	if total == 0 {
		return nil, fmt.Errorf("未提取到任何关键词")
	}

	logger.Info("关键词提取完成", "total", total, "categories", len(set.Categories))
	return set, nil
}

func buildKeywordPrompt(cfg *config.Config, jobDescription string) string {
	var b strings.Builder
	b.WriteString("分析以下职位描述，提取招聘方最看重的关键词，按类别整理。\n")
	b.WriteString("每个关键词给出1-5的权重，5表示职位描述中反复强调的核心要求。\n")
	b.WriteString("只返回JSON，不要任何解释，格式如下：\n")
	b.WriteString("{\n")
	for i, category := range keywordCategories {
		b.WriteString(fmt.Sprintf("  %q: [{\"keyword\": \"...\", \"weight\": 5}]", category))
		if i < len(keywordCategories)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
	b.WriteString("职位描述：\n")
	b.WriteString(utils.TruncateText(jobDescription, cfg.OpenRouter.MaxTextChars))
	return b.String()
}
