package parsing

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jonathan/job-tracker/internal/llm"
)

// DecodeImage accepts either a data URL or bare base64 and returns the raw bytes.
// An empty input yields nil.
func DecodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if llm.IsDataURL(s) {
		_, data, err := llm.ParseDataURL(s)
		return data, err
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("image is neither a data URL nor base64: %w", err)
	}
	return data, nil
}
