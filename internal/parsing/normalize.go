package parsing

import (
	"strconv"
	"strings"

	"github.com/jonathan/job-tracker/internal/types"
)

// normalizeModelOutput maps a salvaged model object onto job fields. Missing
// scalars become "", missing lists become empty, and unknown company types
// become 其他.
func normalizeModelOutput(data map[string]any) (types.Company, types.Position, types.Analysis) {
	companyData := getMap(data, "company")
	positionData := getMap(data, "position")
	analysisData := getMap(data, "aiAnalysis")
	suggestionData := getMap(analysisData, "suggestions")

	company := types.Company{
		Name: getString(companyData, "name"),
		Type: types.CompanyType(getString(companyData, "type")),
	}
	if !company.Type.Valid() {
		company.Type = types.CompanyOther
	}

	position := types.Position{
		Title:      getString(positionData, "title"),
		Salary:     getString(positionData, "salary"),
		Location:   getString(positionData, "location"),
		Status:     types.StatusNew,
		Education:  getString(positionData, "education"),
		Experience: getString(positionData, "experience"),
	}

	analysis := types.Analysis{
		Responsibilities: getStringList(analysisData, "responsibilities"),
		Requirements:     getStringList(analysisData, "requirements"),
		Suggestions: types.Suggestions{
			Resume:      orPlaceholder(getString(suggestionData, "resume")),
			Interview:   orPlaceholder(getString(suggestionData, "interview")),
			Negotiation: orPlaceholder(getString(suggestionData, "negotiation")),
		},
	}
	return company, position, analysis
}

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// getStringList keeps non-blank string entries; anything else is dropped.
func getStringList(m map[string]any, key string) []string {
	out := []string{}
	if m == nil {
		return out
	}
	raw, ok := m[key].([]any)
	if !ok {
		return out
	}
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
