package models

// 响应码定义
const (
	// 成功
	CodeSuccess = 0

	// 客户端错误 (1000-1999)
	CodeInvalidParams    = 1000 // 无效的参数
	CodeMissingParams    = 1001 // 缺少必要参数
	CodeEmptyCV          = 1002 // CV内容为空
	CodeEmptyJobDesc     = 1003 // 职位描述为空
	CodeFileTooLarge     = 1004 // 上传文件超过大小限制
	CodeUnsupportedFile  = 1005 // 不支持的文件类型
	CodeEmptyDocument    = 1006 // 无法从文件中提取文本
	CodeAnalysisNotFound = 1007 // 分析记录不存在

	// 服务端错误 (2000-2999)
	CodeServerError     = 2000 // 服务器内部错误
	CodeDatabaseError   = 2001 // 数据库错误
	CodeKeywordGenError = 2002 // 关键词提取错误
	CodeOptimizeError   = 2003 // CV优化错误
	CodeLLMRateLimited  = 2004 // LLM请求被限流
	CodeLLMAPIError     = 2005 // LLM API错误
)

// 错误码对应的消息
var CodeMessages = map[int]string{
	CodeSuccess:          "success",
	CodeInvalidParams:    "无效的参数",
	CodeMissingParams:    "缺少必要参数",
	CodeEmptyCV:          "CV内容不能为空",
	CodeEmptyJobDesc:     "职位描述不能为空",
	CodeFileTooLarge:     "上传文件超过大小限制",
	CodeUnsupportedFile:  "不支持的文件类型",
	CodeEmptyDocument:    "无法从文件中提取文本",
	CodeAnalysisNotFound: "分析记录不存在",
	CodeServerError:      "服务器内部错误",
	CodeDatabaseError:    "数据库错误",
	CodeKeywordGenError:  "关键词提取错误",
	CodeOptimizeError:    "CV优化错误",
	CodeLLMRateLimited:   "LLM请求被限流，请稍后重试",
	CodeLLMAPIError:      "LLM API错误",
}

// 注意：APIResponse结构体已在swagger_models.go中定义，此处不再重复定义

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Code:    CodeSuccess,
		Message: CodeMessages[CodeSuccess],
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, data interface{}) APIResponse {
	message, exists := CodeMessages[code]
	if !exists {
		message = "未知错误"
	}
	return APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewCustomErrorResponse 创建自定义错误消息的响应
func NewCustomErrorResponse(code int, message string, data interface{}) APIResponse {
	return APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}
