package parsing

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-tracker/internal/types"
)

// Placeholder is used for any suggestion the extraction could not produce.
const Placeholder = "请提供更多职位信息以获取建议"

// Fixed advice returned by the keyword fallback when the input is long enough.
const (
	heuristicResumeAdvice      = "根据该职位要求，建议在简历中突出相关技术栈和项目经验，量化工作成果。"
	heuristicInterviewAdvice   = "建议重点准备技术基础知识和项目经验介绍，了解公司业务背景。"
	heuristicNegotiationAdvice = "了解市场薪资水平，结合自身经验和能力合理设定期望。"
)

const (
	minAdviceInputRunes = 50
	minListItemRunes    = 5
	maxListItems        = 5
)

// Cities recognised by the location pattern, in match priority order.
var Cities = []string{
	"北京", "上海", "广州", "深圳", "杭州", "成都", "武汉", "西安", "南京", "苏州",
	"天津", "重庆", "长沙", "郑州", "东莞", "青岛", "沈阳", "宁波", "昆明", "大连",
	"厦门", "合肥", "佛山", "福州", "哈尔滨", "济南", "温州", "长春", "石家庄", "常州",
	"泉州", "南宁", "贵阳", "南昌", "金华", "珠海", "惠州", "嘉兴", "南通", "中山",
	"保定", "兰州", "台州", "徐州", "太原", "绍兴", "烟台", "海口", "乌鲁木齐", "呼和浩特",
	"银川", "西宁", "拉萨", "柳州", "桂林", "三亚", "襄阳", "宜昌", "岳阳", "常德",
	"衡阳", "株洲", "湘潭", "邵阳", "益阳", "郴州", "永州", "怀化", "娄底", "湘西",
}

var (
	companyRe    = regexp.MustCompile(`(?:公司|企业)[：:]?\s*([^\n，。]+)`)
	titleRe      = regexp.MustCompile(`(前端|后端|全栈|算法|Java|Python|Go|产品|运营|设计|测试).{0,5}(工程师|开发|专家|经理|总监|专员|助理)`)
	salaryRe     = regexp.MustCompile(`(\d+[kK]-\d+[kK]|\d+万-\d+万|\d+-\d+万)`)
	locationRe   = regexp.MustCompile(`(` + strings.Join(Cities, "|") + `)市?`)
	educationRe  = regexp.MustCompile(`(本科|硕士|博士|大专|专科|高中|中专|不限)`)
	experienceRe = regexp.MustCompile(`(\d+年|[一二三四五六七八九十]+年).{0,3}(经验|以上|优先)`)
	listItemRe   = regexp.MustCompile(`^[\d\-•*.、]+\s*(.+)$`)
)

var (
	responsibilityKeywords = []string{"职责", "工作", "负责"}
	requirementKeywords    = []string{"要求", "任职", "条件", "资格"}
)

// heuristicFields extracts job fields with keyword patterns only.
func heuristicFields(text string) (types.Company, types.Position, types.Analysis) {
	company := types.Company{Type: types.CompanyInternet}
	if m := companyRe.FindStringSubmatch(text); m != nil {
		company.Name = strings.TrimSpace(m[1])
	}

	position := types.Position{
		Title:      titleRe.FindString(text),
		Salary:     salaryRe.FindString(text),
		Location:   locationRe.FindString(text),
		Status:     types.StatusNew,
		Education:  educationRe.FindString(text),
		Experience: experienceRe.FindString(text),
	}

	suggestions := types.Suggestions{Resume: Placeholder, Interview: Placeholder, Negotiation: Placeholder}
	if utf8.RuneCountInString(text) > minAdviceInputRunes {
		suggestions = types.Suggestions{
			Resume:      heuristicResumeAdvice,
			Interview:   heuristicInterviewAdvice,
			Negotiation: heuristicNegotiationAdvice,
		}
	}

	analysis := types.Analysis{
		Responsibilities: extractListItems(text, responsibilityKeywords),
		Requirements:     extractListItems(text, requirementKeywords),
		Suggestions:      suggestions,
	}
	return company, position, analysis
}

// extractListItems collects bulleted lines that mention one of the keywords.
func extractListItems(text string, keywords []string) []string {
	items := []string{}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !containsAny(trimmed, keywords) {
			continue
		}
		m := listItemRe.FindStringSubmatch(trimmed)
		if m == nil || utf8.RuneCountInString(m[1]) <= minListItemRunes {
			continue
		}
		items = append(items, strings.TrimSpace(m[1]))
		if len(items) == maxListItems {
			break
		}
	}
	return items
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
