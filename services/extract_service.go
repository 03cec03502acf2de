package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"cv_optimizer/config"
	"cv_optimizer/logger"
	"cv_optimizer/models"
	"cv_optimizer/repository"
	"cv_optimizer/utils"
)

// 文档处理的哨兵错误
var (
	ErrUnsupportedType = errors.New("不支持的文件类型")
	ErrEmptyDocument   = errors.New("文档中没有可提取的文本")
	ErrFileTooLarge    = errors.New("文件超过大小限制")
)

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// ExtractDocumentText 按扩展名提取文档纯文本，支持pdf、docx和txt
func ExtractDocumentText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	var err error

	switch ext {
	case ".pdf":
		text, err = extractPDFText(data)
	case ".docx":
		text, err = extractDocxText(data)
	case ".txt":
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("读取PDF失败: %w", err)
	}

	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("提取PDF页面失败", "page", i, "error", err)
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("解析DOCX失败: %w", err)
	}
	defer doc.Close()

	// GetContent返回带标记的文档内容，去掉标记后才是纯文本
	content := doc.Editable().GetContent()
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	return xmlTagPattern.ReplaceAllString(content, ""), nil
}

// AllowedExtension 校验文件扩展名是否在允许列表内
func AllowedExtension(cfg *config.Config, filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range cfg.Upload.AllowedExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

// SaveUpload 把上传内容写入上传目录，文件名用UUID前缀避免冲突
func SaveUpload(cfg *config.Config, originalName string, data []byte) (string, error) {
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return "", fmt.Errorf("创建上传目录失败: %w", err)
	}

	storedName := uuid.New().String() + "_" + utils.SanitizeFilename(originalName)
	storedPath := filepath.Join(cfg.Upload.Dir, storedName)

	if err := os.WriteFile(storedPath, data, 0o644); err != nil {
		return "", fmt.Errorf("保存上传文件失败: %w", err)
	}
	return storedPath, nil
}

// AnalyzeUpload 处理上传的CV：校验、提取文本、按内容指纹去重、识别上下文、落库。
// 同一份文件重复上传时直接复用已有的分析记录，不再调用LLM。
func AnalyzeUpload(ctx context.Context, cfg *config.Config, originalName string, data []byte) (*models.CVAnalysis, error) {
	if int64(len(data)) > int64(cfg.Upload.MaxSizeMB)*1024*1024 {
		return nil, ErrFileTooLarge
	}
	if !AllowedExtension(cfg, originalName) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(originalName))
	}

	text, err := ExtractDocumentText(originalName, data)
	if err != nil {
		return nil, err
	}

	contentMD5 := utils.CalculateMD5(text)
	if existing, err := repository.FindAnalysisByContentMD5(contentMD5); err != nil {
		logger.Warn("查询重复上传记录失败", "error", err)
	} else if existing != nil {
		logger.Info("命中重复上传，复用已有分析", "analysis_id", existing.ID, "content_md5", contentMD5)
		// 刷新时间，避免仍在使用的分析被定时清理
		if err := repository.TouchAnalysisTime(existing.ID, time.Now()); err != nil {
			logger.Warn("刷新分析时间失败", "analysis_id", existing.ID, "error", err)
		}
		return existing, nil
	}

	storedPath, err := SaveUpload(cfg, originalName, data)
	if err != nil {
		return nil, err
	}

	jobCtx := DetectJobContext(ctx, cfg, text, "")

	analysis := &models.CVAnalysis{
		OriginalFilename: originalName,
		StoredPath:       storedPath,
		ContentMD5:       contentMD5,
		ExtractedText:    text,
		Seniority:        jobCtx.Seniority,
		Industry:         jobCtx.Industry,
		JobType:          jobCtx.JobType,
		SpecificRole:     jobCtx.SpecificRole,
	}

	id, err := repository.SaveAnalysis(analysis)
	if err != nil {
		return nil, fmt.Errorf("保存分析记录失败: %w", err)
	}
	analysis.ID = id

	logger.Info("CV分析完成",
		"analysis_id", id,
		"filename", originalName,
		"text_length", len(text),
		"seniority", jobCtx.Seniority)

	return analysis, nil
}
