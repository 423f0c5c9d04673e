package parse

import (
	"strconv"
	"strings"
)

// Delimiters used by the runtime format templates. Triple colons keep port
// lists ("0.0.0.0:80->80/tcp") intact in container listings.
const (
	ListingSep = ":::"
	StatsSep   = "::"
)

// Fields splits line on sep and pads the result with empty strings up to n
// fields. Extra fields beyond n are kept.
func Fields(line, sep string, n int) []string {
	parts := strings.Split(line, sep)
	for len(parts) < n {
		parts = append(parts, "")
	}
	return parts
}

// Lines splits command output into trimmed, non-empty lines. Lines that
// contain any of the skip markers (such as a table header) are dropped.
func Lines(text string, skip ...string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || containsAny(l, skip) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// orDefault returns the trimmed s, or def when s is blank.
func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

// percent parses "12.5%" as 12.5. Unparseable input yields 0.
func percent(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// integer parses a decimal integer. Unparseable input yields 0.
func integer(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
