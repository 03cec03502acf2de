package models

// APIResponse 通用API响应
type APIResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// KeywordRequest 关键词提取请求体
type KeywordRequest struct {
	JobDescription string `json:"job_description" example:"招聘后端工程师，要求熟悉Golang、MySQL..."`
}

// OptimizeRequest CV优化请求体
type OptimizeRequest struct {
	CVText         string `json:"cv_text" example:"张三，5年后端开发经验..."`
	JobDescription string `json:"job_description" example:"招聘后端工程师..."`
}

// CoverLetterRequest 求职信生成请求体
type CoverLetterRequest struct {
	CVText         string `json:"cv_text"`
	JobDescription string `json:"job_description"`
	CompanyName    string `json:"company_name,omitempty"`
}

// MultiVersionRequest 多版本CV生成请求体
type MultiVersionRequest struct {
	CVText string   `json:"cv_text"`
	Roles  []string `json:"roles" example:"后端工程师,数据分析师"`
}

// FeedbackRequest 招聘顾问点评请求体
type FeedbackRequest struct {
	CVText         string `json:"cv_text"`
	JobDescription string `json:"job_description,omitempty"`
}

// OptimizeResponse CV优化响应
type OptimizeResponse struct {
	Code    int    `json:"code" example:"0"`
	Message string `json:"message" example:"success"`
	Data    struct {
		OptimizedCV string     `json:"optimized_cv"`
		Keywords    []Keyword  `json:"keywords"`
		Context     JobContext `json:"context"`
	} `json:"data"`
}
