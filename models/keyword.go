package models

import "sort"

// Keyword 从职位描述中提取的单个关键词
type Keyword struct {
	Text     string  `json:"keyword"`
	Category string  `json:"category,omitempty"`
	Weight   float64 `json:"weight,omitempty"` // 1-5，越大越重要
}

// KeywordSet 一次提取得到的全部关键词，按类别分组
type KeywordSet struct {
	Categories map[string][]Keyword `json:"categories"`
}

// Labels 返回所有关键词文本，按权重从高到低排列，同权重保持提取顺序
func (s *KeywordSet) Labels() []string {
	if s == nil {
		return nil
	}

	var all []Keyword
	for _, words := range s.Categories {
		all = append(all, words...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Weight > all[j].Weight
	})

	seen := make(map[string]bool)
	labels := make([]string, 0, len(all))
	for _, kw := range all {
		if kw.Text == "" || seen[kw.Text] {
			continue
		}
		seen[kw.Text] = true
		labels = append(labels, kw.Text)
	}
	return labels
}

// HighPriority 返回权重不低于阈值的关键词
func (s *KeywordSet) HighPriority(minWeight float64) []Keyword {
	if s == nil {
		return nil
	}
	var result []Keyword
	for _, words := range s.Categories {
		for _, kw := range words {
			if kw.Weight >= minWeight {
				result = append(result, kw)
			}
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Weight > result[j].Weight
	})
	return result
}

// Flatten 返回所有关键词，带类别信息
func (s *KeywordSet) Flatten() []Keyword {
	if s == nil {
		return nil
	}
	var all []Keyword
	for category, words := range s.Categories {
		for _, kw := range words {
			if kw.Category == "" {
				kw.Category = category
			}
			all = append(all, kw)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Weight > all[j].Weight
	})
	return all
}
