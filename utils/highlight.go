package utils

import (
	"html"
	"html/template"
	"sort"
	"strings"
	"unicode"

	"cv_optimizer/logger"
)

// Segment 高亮结果中的一段文本，Keyword为true表示该段是命中的关键词
type Segment struct {
	Text    string
	Keyword bool
}

// HighlightOptions 关键词高亮选项
type HighlightOptions struct {
	MinKeywordLength int  // 参与高亮的关键词最小长度，长度不超过该值的关键词被过滤，0表示使用默认值3
	WholeWord        bool // 是否要求整词匹配，避免"Java"命中"JavaScript"
}

type span struct {
	start int // 起始rune下标，含
	end   int // 结束rune下标，不含
}

// FilterKeywords 清洗关键词列表：去除首尾空白、过滤过短的噪声词、忽略大小写去重
func FilterKeywords(keywords []string, minLength int) []string {
	if minLength <= 0 {
		minLength = 3
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if len([]rune(kw)) <= minLength {
			continue
		}
		key := strings.ToLower(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, kw)
	}
	return result
}

// SortKeywordsByLength 按字符长度从长到短排列关键词，等长时保持原有顺序，
// 保证较长的关键词先占位，"Management"不会被其子串"Manage"截走
func SortKeywordsByLength(keywords []string) []string {
	sorted := make([]string, len(keywords))
	copy(sorted, keywords)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})
	return sorted
}

// HighlightSegments 在原始文本上计算所有关键词的匹配区间并切分文本。
// 匹配统一在原始文本上进行，先由长关键词占位，重叠区间直接丢弃，
// 因此不存在对已替换结果的二次匹配，每处命中只被标记一次。
func HighlightSegments(text string, keywords []string, opts HighlightOptions) []Segment {
	if text == "" {
		return nil
	}

	candidates := SortKeywordsByLength(FilterKeywords(keywords, opts.MinKeywordLength))
	if len(candidates) == 0 {
		return []Segment{{Text: text}}
	}

	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	claimed := make([]bool, len(runes))
	var spans []span

	for _, kw := range candidates {
		kwRunes := []rune(strings.ToLower(kw))
		n := len(kwRunes)
		if n == 0 || n > len(runes) {
			continue
		}

		for i := 0; i+n <= len(runes); i++ {
			if !matchAt(lower, kwRunes, i) {
				continue
			}
			if opts.WholeWord && !atWordBoundary(runes, i, i+n) {
				continue
			}
			if anyClaimed(claimed, i, i+n) {
				continue
			}
			for j := i; j < i+n; j++ {
				claimed[j] = true
			}
			spans = append(spans, span{start: i, end: i + n})
			i += n - 1
		}
	}

	if len(spans) == 0 {
		return []Segment{{Text: text}}
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})

	// 单次遍历拼装结果，保留命中处的原始大小写
	var segments []Segment
	pos := 0
	for _, sp := range spans {
		if sp.start > pos {
			segments = append(segments, Segment{Text: string(runes[pos:sp.start])})
		}
		segments = append(segments, Segment{Text: string(runes[sp.start:sp.end]), Keyword: true})
		pos = sp.end
	}
	if pos < len(runes) {
		segments = append(segments, Segment{Text: string(runes[pos:])})
	}

	return segments
}

// HighlightHTML 将文本渲染为带高亮标记的HTML，非关键词部分做HTML转义
func HighlightHTML(text string, keywords []string, opts HighlightOptions) template.HTML {
	var b strings.Builder
	for _, seg := range HighlightSegments(text, keywords, opts) {
		if seg.Keyword {
			b.WriteString(`<mark class="keyword-highlight">`)
			b.WriteString(html.EscapeString(seg.Text))
			b.WriteString(`</mark>`)
		} else {
			b.WriteString(html.EscapeString(seg.Text))
		}
	}
	return template.HTML(b.String())
}

// renderHighlight 可替换的渲染入口，测试中用于模拟渲染失败
var renderHighlight = HighlightHTML

// SafeHighlightHTML 高亮失败时退回未高亮的原文，页面保持可用
func SafeHighlightHTML(text string, keywords []string, opts HighlightOptions) (result template.HTML) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("关键词高亮失败，返回未高亮文本", "panic", r, "keywords_count", len(keywords))
			result = template.HTML(html.EscapeString(text))
		}
	}()
	return renderHighlight(text, keywords, opts)
}

func matchAt(lower, kw []rune, pos int) bool {
	for j, r := range kw {
		if lower[pos+j] != r {
			return false
		}
	}
	return true
}

func anyClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

func atWordBoundary(runes []rune, start, end int) bool {
	if start > 0 && isWordRune(runes[start-1]) && isWordRune(runes[start]) {
		return false
	}
	if end < len(runes) && isWordRune(runes[end-1]) && isWordRune(runes[end]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
