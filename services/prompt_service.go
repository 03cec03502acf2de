package services

import (
	"fmt"
	"strings"

	"cv_optimizer/config"
	"cv_optimizer/models"
	"cv_optimizer/utils"
)

// 按行业给出的优化侧重点
var industryGuidance = map[string]string{
	"it":            "突出技术栈、项目规模和系统性能指标，使用工程师熟悉的术语",
	"finance":       "强调合规意识、风险控制经验和量化业绩，数字要精确",
	"marketing":     "突出营销活动效果、增长数据和渠道经验",
	"sales":         "强调业绩达成率、客户开拓数量和成交金额",
	"engineering":   "突出工程资质、项目交付记录和安全规范意识",
	"healthcare":    "强调执业资质、临床经验和患者服务记录",
	"education":     "突出教学成果、课程设计经验和学生评价",
	"logistics":     "强调配送时效、库存准确率和流程优化经验",
	"manufacturing": "突出产能指标、质量控制和精益生产经验",
	"hr":            "强调招聘效率、员工保留率和制度建设经验",
	"legal":         "突出执业领域、案件经验和合规审查记录",
	"general":       "突出与目标职位最相关的经验和可量化的成果",
}

// 按资历级别给出的表达风格
var seniorityGuidance = map[string]string{
	"junior": "突出学习能力、实习和项目经历，诚实呈现，不夸大经验年限",
	"mid":    "突出独立负责的项目和可量化的业绩，体现专业深度",
	"senior": "突出团队管理、战略决策和业务影响力，用管理者的语言",
}

// 按岗位类型给出的CV结构建议
var jobTypeGuidance = map[string]string{
	"office":   "按标准结构组织：个人概述、工作经历、技能、教育背景",
	"physical": "突出体能条件、操作证书和安全记录，结构简洁直接",
	"driver":   "突出驾照类型、驾龄、无事故记录和熟悉的路线区域",
	"trade":    "突出工种资质、工具技能和完成的工程项目",
	"service":  "突出服务意识、客户满意度和应变能力",
	"remote":   "突出远程协作工具经验、自我管理能力和沟通记录",
}

// 部分常见职位的核心胜任力，没有命中的职位用通用描述
var roleCompetencies = map[string]string{
	"developer":   "代码质量、系统设计、技术选型和线上问题排查能力",
	"programmer":  "代码质量、系统设计、技术选型和线上问题排查能力",
	"driver":      "安全驾驶记录、时效意识和车辆维护常识",
	"salesperson": "客户开拓、谈判技巧和业绩达成能力",
	"warehouse":   "库存管理、叉车操作和出入库流程经验",
	"accountant":  "账务处理、报表编制和税务合规经验",
	"nurse":       "临床护理、应急处置和患者沟通能力",
	"teacher":     "课程设计、课堂管理和学生成绩提升记录",
}

// 按资历级别的可量化成果示例，引导模型写出带数字的描述
var achievementExamples = map[string]string{
	"junior": "例如：参与3个项目的开发，完成20+功能模块；实习期间处理500+客户咨询",
	"mid":    "例如：独立负责的模块支撑日均10万请求；优化流程后处理时效缩短30%",
	"senior": "例如：带领8人团队交付年度核心项目；推动的改造方案每年节省成本200万",
}

// BuildOptimizePrompt 组装CV优化的完整提示词。
// 结构：任务说明、职位上下文指导、关键词要求、结构质量要求、原始材料。
func BuildOptimizePrompt(cfg *config.Config, jobCtx models.JobContext, keywords *models.KeywordSet, cvText, jobDescription string) string {
	var b strings.Builder

	b.WriteString("你的任务是针对目标职位优化下面的CV，保持事实真实，不编造经历。\n\n")

	b.WriteString("【职位上下文】\n")
	b.WriteString(fmt.Sprintf("- 行业：%s，%s\n", jobCtx.Industry, guidanceFor(industryGuidance, jobCtx.Industry, "general")))
	b.WriteString(fmt.Sprintf("- 资历：%s，%s\n", jobCtx.Seniority, guidanceFor(seniorityGuidance, jobCtx.Seniority, "mid")))
	b.WriteString(fmt.Sprintf("- 岗位类型：%s，%s\n", jobCtx.JobType, guidanceFor(jobTypeGuidance, jobCtx.JobType, "office")))
	b.WriteString(fmt.Sprintf("- 目标职位：%s，重点体现%s\n", jobCtx.SpecificRole, roleCompetencyFor(jobCtx.SpecificRole)))
	b.WriteString("\n")

	if block := buildKeywordInstructions(keywords); block != "" {
		b.WriteString(block)
		b.WriteString("\n")
	}

	b.WriteString("【量化成果】\n")
	b.WriteString("工作经历尽量写成带数字的成果描述。")
	b.WriteString(guidanceFor(achievementExamples, jobCtx.Seniority, "mid"))
	b.WriteString("。原文没有数字依据的不要凭空编造。\n\n")

	b.WriteString("【结构要求】\n")
	b.WriteString("- 保留CV原有的全部事实信息，只调整表达和组织方式\n")
	b.WriteString("- 工作经历按时间倒序，每段经历用要点列出职责和成果\n")
	b.WriteString("- 删除与目标职位无关的冗余内容\n")
	b.WriteString("- 使用CV原文的语言输出，不要翻译\n")
	b.WriteString("- 只输出优化后的CV正文，不要任何前言或解释\n\n")

	if strings.TrimSpace(jobDescription) != "" {
		b.WriteString("【职位描述】\n")
		b.WriteString(utils.TruncateText(jobDescription, cfg.OpenRouter.MaxTextChars/3))
		b.WriteString("\n\n")
	}

	b.WriteString("【原始CV】\n")
	b.WriteString(utils.TruncateText(cvText, cfg.OpenRouter.MaxTextChars))

	return b.String()
}

// buildKeywordInstructions 把高权重关键词转成自然融入的要求
func buildKeywordInstructions(keywords *models.KeywordSet) string {
	if keywords == nil {
		return ""
	}

	var priority []string
	inPriority := make(map[string]bool)
	for _, kw := range keywords.HighPriority(4) {
		priority = append(priority, kw.Text)
		inPriority[kw.Text] = true
	}

	var rest []string
	for _, label := range keywords.Labels() {
		if !inPriority[label] {
			rest = append(rest, label)
		}
	}

	if len(priority) == 0 && len(rest) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("【关键词要求】\n")
	if len(priority) > 0 {
		b.WriteString("以下核心关键词必须自然地出现在CV中（仅在事实支持的前提下）：")
		b.WriteString(strings.Join(priority, "、"))
		b.WriteString("\n")
	}
	if len(rest) > 0 {
		b.WriteString("以下关键词在合适的位置尽量融入：")
		b.WriteString(strings.Join(rest, "、"))
		b.WriteString("\n")
	}
	b.WriteString("关键词要融入句子，不要堆砌成列表。\n")
	return b.String()
}

// BuildCoverLetterPrompt 求职信提示词
func BuildCoverLetterPrompt(cfg *config.Config, cvText, jobDescription, companyName string) string {
	var b strings.Builder
	b.WriteString("根据以下CV和职位描述，写一封求职信。\n")
	b.WriteString("要求：正式但不做作，突出CV中与职位最匹配的2-3项经历，控制在300词以内，")
	b.WriteString("使用CV原文的语言，只输出信件正文。\n")
	if strings.TrimSpace(companyName) != "" {
		b.WriteString(fmt.Sprintf("收件公司：%s\n", companyName))
	}
	b.WriteString("\n【职位描述】\n")
	b.WriteString(utils.TruncateText(jobDescription, cfg.OpenRouter.MaxTextChars/3))
	b.WriteString("\n\n【CV】\n")
	b.WriteString(utils.TruncateText(cvText, cfg.OpenRouter.MaxTextChars))
	return b.String()
}

// BuildFeedbackPrompt 招聘官视角的CV点评提示词
func BuildFeedbackPrompt(cfg *config.Config, cvText, jobDescription string) string {
	var b strings.Builder
	b.WriteString("以资深招聘官的视角点评以下CV。\n")
	b.WriteString("输出三个部分：整体印象、三个最需要改进的问题（按严重程度排序）、针对目标职位的匹配度评估。\n")
	b.WriteString("语气直接坦率，使用CV原文的语言。\n")
	if strings.TrimSpace(jobDescription) != "" {
		b.WriteString("\n【目标职位】\n")
		b.WriteString(utils.TruncateText(jobDescription, cfg.OpenRouter.MaxTextChars/3))
	}
	b.WriteString("\n\n【CV】\n")
	b.WriteString(utils.TruncateText(cvText, cfg.OpenRouter.MaxTextChars))
	return b.String()
}

// BuildTranslatePrompt 整份CV翻译为英文的提示词
func BuildTranslatePrompt(cfg *config.Config, cvText string) string {
	var b strings.Builder
	b.WriteString("把以下CV翻译成地道的职场英语。\n")
	b.WriteString("保留原有结构和全部事实信息，职位名称和技术术语使用业内通用的英文表达，只输出翻译结果。\n\n")
	b.WriteString("【CV】\n")
	b.WriteString(utils.TruncateText(cvText, cfg.OpenRouter.MaxTextChars))
	return b.String()
}

// BuildRoleVersionPrompt 针对单个目标职位方向改写CV的提示词
func BuildRoleVersionPrompt(cfg *config.Config, cvText, role string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("把以下CV改写成针对「%s」方向的版本。\n", role))
	b.WriteString(fmt.Sprintf("突出与%s最相关的经验和技能，重新组织要点顺序，弱化无关内容。\n", role))
	b.WriteString("保持事实真实，不编造经历，使用CV原文的语言，只输出改写后的CV正文。\n\n")
	b.WriteString("【CV】\n")
	b.WriteString(utils.TruncateText(cvText, cfg.OpenRouter.MaxTextChars))
	return b.String()
}

// BuildCareerSuggestionPrompt 转行方向建议的提示词
func BuildCareerSuggestionPrompt(cfg *config.Config, cvText string) string {
	var b strings.Builder
	b.WriteString("根据以下CV分析候选人的可迁移技能，推荐3个值得考虑的转行方向。\n")
	b.WriteString("每个方向说明：为什么匹配、需要补充什么能力、入行的第一步。使用CV原文的语言。\n\n")
	b.WriteString("【CV】\n")
	b.WriteString(utils.TruncateText(cvText, cfg.OpenRouter.MaxTextChars))
	return b.String()
}

func guidanceFor(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return m[fallback]
}

func roleCompetencyFor(role string) string {
	lower := strings.ToLower(role)
	for key, competency := range roleCompetencies {
		if strings.Contains(lower, key) {
			return competency
		}
	}
	return "该职位的核心职责和可量化的工作成果"
}
