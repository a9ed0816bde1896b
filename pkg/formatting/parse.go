package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content holds no decodable JSON.
var ErrParseFailed = errors.New("failed to parse response")

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// Parse decodes model output into T. It tries the raw content, then the
// body of a markdown code fence, then the outermost object or array span.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	candidates := []string{content}
	if m := fencePattern.FindStringSubmatch(content); len(m) >= 2 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if span := outerSpan(content); span != "" {
		candidates = append(candidates, span)
	}

	for _, c := range candidates {
		if err := json.Unmarshal([]byte(c), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, truncate(content, 200))
}

func outerSpan(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
