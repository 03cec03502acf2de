package models

import "time"

// CVAnalysis CV分析记录，对应cv_analyses表
type CVAnalysis struct {
	ID               int64     `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	StoredPath       string    `json:"-"`
	ContentMD5       string    `json:"-"`
	ExtractedText    string    `json:"extracted_text,omitempty"`
	Seniority        string    `json:"seniority"`
	Industry         string    `json:"industry"`
	JobType          string    `json:"job_type"`
	SpecificRole     string    `json:"specific_role"`
	CreatedAt        time.Time `json:"created_at"`
}

// Optimization CV优化记录，对应cv_optimizations表
type Optimization struct {
	ID             int64     `json:"id"`
	AnalysisID     int64     `json:"analysis_id,omitempty"`
	JobDescription string    `json:"job_description"`
	OriginalCV     string    `json:"original_cv"`
	OptimizedCV    string    `json:"optimized_cv"`
	Keywords       []Keyword `json:"keywords,omitempty"`
	Seniority      string    `json:"seniority"`
	Industry       string    `json:"industry"`
	JobType        string    `json:"job_type"`
	SpecificRole   string    `json:"specific_role"`
	CreatedAt      time.Time `json:"created_at"`
}

// CVVersion 针对某个职位方向改写的CV版本
type CVVersion struct {
	Role    string `json:"role"`
	Content string `json:"cv"`
}

// JobContext 职位分析结果，由四次分类调用得出
type JobContext struct {
	Seniority    string `json:"seniority"`     // junior / mid / senior
	Industry     string `json:"industry"`      // it / finance / marketing / ...
	JobType      string `json:"job_type"`      // physical / technical / office / professional / creative / it
	SpecificRole string `json:"specific_role"` // 具体职业角色，如"程序员"
}
