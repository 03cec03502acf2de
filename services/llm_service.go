package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cv_optimizer/config"
	"cv_optimizer/logger"
)

// LLM调用的哨兵错误
var (
	ErrRateLimited   = errors.New("LLM请求被限流")
	ErrEmptyResponse = errors.New("LLM响应中没有内容")
	ErrNoAPIKey      = errors.New("OpenRouter API密钥未配置")
)

// 系统提示词：要求模型始终使用CV或职位描述本身的语言回答
const systemPrompt = "你是资深的简历编辑和职业顾问。始终使用用户提供的CV或职位描述所使用的语言回答。"

// 定义OpenRouter API请求和响应结构
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// SendChatRequest 调用OpenRouter chat completions接口，带重试。
// 429直接返回ErrRateLimited，不做重试；网络错误按配置的次数和间隔重试。
func SendChatRequest(ctx context.Context, cfg *config.Config, prompt string, maxTokens int) (string, error) {
	if cfg.OpenRouter.APIKey == "" {
		logger.Error("OPENROUTER_API_KEY未设置")
		return "", ErrNoAPIKey
	}

	if maxTokens <= 0 {
		maxTokens = cfg.OpenRouter.MaxTokens
	}

	reqBody := chatRequest{
		Model: cfg.OpenRouter.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxTokens,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		logger.Error("序列化请求体失败", "error", err)
		return "", err
	}

	// 记录提示词的前100个字符（避免日志过长）
	promptPreview := prompt
	if len(promptPreview) > 100 {
		promptPreview = promptPreview[:100] + "..."
	}
	logger.Debug("LLM请求提示词预览", "prompt_preview", promptPreview, "request_size", len(reqJSON))

	var lastErr error
	retryDelay := time.Duration(cfg.OpenRouter.RetryDelay) * time.Second
	retryCount := cfg.OpenRouter.RetryCount
	if retryCount <= 0 {
		retryCount = 3
	}

	for attempt := 1; attempt <= retryCount; attempt++ {
		logger.Debug("调用OpenRouter API", "attempt", attempt, "max_attempts", retryCount)

		content, err := doChatRequest(ctx, cfg, reqJSON)
		if err == nil {
			return content, nil
		}
		if errors.Is(err, ErrRateLimited) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		lastErr = err
		logger.Warn("OpenRouter请求失败", "attempt", attempt, "error", err)

		if attempt < retryCount {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}

	logger.Error("OpenRouter重试次数已用尽", "attempts", retryCount, "error", lastErr)
	return "", fmt.Errorf("OpenRouter请求在%d次尝试后失败: %w", retryCount, lastErr)
}

// doChatRequest 发送单次请求并解析响应
func doChatRequest(ctx context.Context, cfg *config.Config, reqJSON []byte) (string, error) {
	url := cfg.OpenRouter.BaseURL + "/v1/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqJSON))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.OpenRouter.APIKey)
	// OpenRouter要求带上来源站点和应用名称
	if cfg.OpenRouter.Referer != "" {
		req.Header.Set("HTTP-Referer", cfg.OpenRouter.Referer)
	}
	if cfg.OpenRouter.Title != "" {
		req.Header.Set("X-Title", cfg.OpenRouter.Title)
	}

	startTime := time.Now()
	client := &http.Client{Timeout: time.Duration(cfg.OpenRouter.TimeoutSec) * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("读取响应失败", "error", err)
		return "", err
	}

	logger.Debug("LLM响应状态",
		"status_code", resp.StatusCode,
		"response_size", len(body),
		"duration_ms", time.Since(startTime).Milliseconds())

	if resp.StatusCode == http.StatusTooManyRequests {
		logger.Error("OpenRouter限流", "status", resp.StatusCode)
		return "", ErrRateLimited
	}

	if resp.StatusCode != http.StatusOK {
		responsePreview := string(body)
		if len(responsePreview) > 500 {
			responsePreview = responsePreview[:500] + "..."
		}
		logger.Error("API请求失败", "status", resp.StatusCode, "response", responsePreview)
		return "", fmt.Errorf("API请求失败: %d - %s", resp.StatusCode, responsePreview)
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		logger.Error("解析响应失败", "error", err)
		return "", err
	}

	if len(cr.Choices) == 0 {
		logger.Error("API响应中没有内容", "response_body", string(body))
		return "", ErrEmptyResponse
	}

	content := cr.Choices[0].Message.Content
	logger.Debug("成功获取LLM响应",
		"tokens_prompt", cr.Usage.PromptTokens,
		"tokens_completion", cr.Usage.CompletionTokens,
		"tokens_total", cr.Usage.TotalTokens,
		"finish_reason", cr.Choices[0].FinishReason)

	return content, nil
}
