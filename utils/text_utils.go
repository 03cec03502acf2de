package utils

import "strings"

// DeduplicateSlice 去重字符串切片
func DeduplicateSlice(input []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0)

	for _, val := range input {
		val = strings.TrimSpace(val)
		if val != "" && !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}

	return result
}

// TruncateText 将文本截断到最大字符数，超出时追加截断提示
func TruncateText(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + "...（文本过长，已截断）"
}

// ExtractJSONFromText 从LLM返回的文本中提取JSON部分
func ExtractJSONFromText(text string) string {
	// 优先查找```json和```之间的内容
	startMarker := "```json"
	endMarker := "```"
	if startIdx := strings.Index(text, startMarker); startIdx >= 0 {
		startIdx += len(startMarker)
		if endIdx := strings.Index(text[startIdx:], endMarker); endIdx > 0 {
			return strings.TrimSpace(text[startIdx : startIdx+endIdx])
		}
	}

	// 查找文本中第一个 '{' 和最后一个 '}' 之间的内容
	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")
	if startIdx >= 0 && endIdx > startIdx {
		return text[startIdx : endIdx+1]
	}

	// 如果仍然找不到，返回原始文本
	return strings.TrimSpace(text)
}

// SanitizeFilename 清理上传文件名，只保留字母、数字、点、下划线和连字符
func SanitizeFilename(name string) string {
	// 去掉路径部分，防止目录穿越
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		cleaned = "upload"
	}
	return cleaned
}
