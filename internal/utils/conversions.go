package utils

import "strings"

// ToStringSlice reads a list value that may be a YAML sequence or a comma separated
// string (as environment variables deliver it). Blank entries are dropped.
func ToStringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		return SplitList(t)
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
