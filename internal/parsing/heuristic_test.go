package parsing

import (
	"strings"
	"testing"

	"github.com/jonathan/job-tracker/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestHeuristicFields_NoKeywords(t *testing.T) {
	company, position, analysis := heuristicFields("hello world")

	assert.Equal(t, "", company.Name)
	assert.Equal(t, types.CompanyInternet, company.Type)
	assert.Equal(t, types.Position{Status: types.StatusNew}, position)
	assert.NotNil(t, analysis.Responsibilities)
	assert.NotNil(t, analysis.Requirements)
	assert.Empty(t, analysis.Responsibilities)
	assert.Empty(t, analysis.Requirements)
	assert.Equal(t, Placeholder, analysis.Suggestions.Resume)
	assert.Equal(t, Placeholder, analysis.Suggestions.Interview)
	assert.Equal(t, Placeholder, analysis.Suggestions.Negotiation)
}

func TestHeuristicFields_Scalars(t *testing.T) {
	text := "公司：星辰科技有限公司，位于深圳市\n招聘前端开发工程师，薪资20万-30万，硕士，五年以上经验"
	company, position, _ := heuristicFields(text)

	assert.Equal(t, "星辰科技有限公司", company.Name)
	assert.Equal(t, "前端开发工程师", position.Title)
	assert.Equal(t, "20万-30万", position.Salary)
	assert.Equal(t, "深圳市", position.Location)
	assert.Equal(t, "硕士", position.Education)
	assert.Equal(t, "五年以上经验", position.Experience)
}

func TestHeuristicFields_ListItems(t *testing.T) {
	text := strings.Join([]string{
		"岗位职责：",
		"1. 负责后端服务的设计与开发",
		"2、负责",
		"- 参与系统架构工作与技术选型",
		"任职要求：",
		"• 本科及以上学历，计算机相关专业要求",
		"* 具备良好的沟通能力，满足任职条件",
		"普通一行描述要求但没有编号",
	}, "\n")

	_, _, analysis := heuristicFields(text)
	assert.Equal(t, []string{"负责后端服务的设计与开发", "参与系统架构工作与技术选型"}, analysis.Responsibilities)
	assert.Equal(t, []string{"本科及以上学历，计算机相关专业要求", "具备良好的沟通能力，满足任职条件"}, analysis.Requirements)
}

func TestHeuristicFields_ListCappedAtFive(t *testing.T) {
	var lines []string
	for i := 0; i < 8; i++ {
		lines = append(lines, "- 负责第"+string(rune('a'+i))+"项核心业务模块")
	}
	_, _, analysis := heuristicFields(strings.Join(lines, "\n"))
	assert.Len(t, analysis.Responsibilities, 5)
}

func TestHeuristicFields_AdviceThreshold(t *testing.T) {
	short := strings.Repeat("字", 50)
	_, _, analysis := heuristicFields(short)
	assert.Equal(t, Placeholder, analysis.Suggestions.Resume)

	long := strings.Repeat("字", 51)
	_, _, analysis = heuristicFields(long)
	assert.Equal(t, heuristicResumeAdvice, analysis.Suggestions.Resume)
	assert.Equal(t, heuristicInterviewAdvice, analysis.Suggestions.Interview)
	assert.Equal(t, heuristicNegotiationAdvice, analysis.Suggestions.Negotiation)
}

func TestCities(t *testing.T) {
	assert.Len(t, Cities, 70)
	assert.Equal(t, "北京", Cities[0])
	assert.Equal(t, "湘西", Cities[len(Cities)-1])
}
