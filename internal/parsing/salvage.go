package parsing

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedBlockRe  = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	braceSpanRe    = regexp.MustCompile(`\{[\s\S]*\}`)
	blockCommentRe = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	lineCommentRe  = regexp.MustCompile(`(?m)//.*$`)
)

// salvageStrategy tries to recover a JSON object from raw model output.
type salvageStrategy func(content string) (map[string]any, bool)

// salvageStrategies run in order; the first success wins.
var salvageStrategies = []salvageStrategy{
	parseStrict,
	parseFenced,
	parseBraceSpan,
	parseWithoutComments,
}

// Salvage recovers a JSON object from free-form model output. Only objects
// count as success; arrays and scalars are rejected.
func Salvage(content string) (map[string]any, bool) {
	if strings.TrimSpace(content) == "" {
		return nil, false
	}
	for _, strategy := range salvageStrategies {
		if obj, ok := strategy(content); ok {
			return obj, true
		}
	}
	return nil, false
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func parseStrict(content string) (map[string]any, bool) {
	return decodeObject(content)
}

func parseFenced(content string) (map[string]any, bool) {
	m := fencedBlockRe.FindStringSubmatch(content)
	if m == nil {
		return nil, false
	}
	return decodeObject(strings.TrimSpace(m[1]))
}

func parseBraceSpan(content string) (map[string]any, bool) {
	span := braceSpanRe.FindString(content)
	if span == "" {
		return nil, false
	}
	return decodeObject(span)
}

func parseWithoutComments(content string) (map[string]any, bool) {
	candidates := []string{braceSpanRe.FindString(content)}
	if m := fencedBlockRe.FindStringSubmatch(content); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if obj, ok := decodeObject(stripComments(c)); ok {
			return obj, true
		}
	}
	return nil, false
}

func stripComments(s string) string {
	s = blockCommentRe.ReplaceAllString(s, "")
	return lineCommentRe.ReplaceAllString(s, "")
}
