package utils

import "strings"

// StripFences removes a leading/trailing markdown code fence from model
// output, e.g. ```json ... ```.
func StripFences(text string) string {
	clean := strings.TrimSpace(text)

	if strings.HasPrefix(clean, "```") {
		if newline := strings.Index(clean, "\n"); newline >= 0 {
			clean = clean[newline+1:]
		} else {
			clean = strings.TrimPrefix(clean, "```")
		}
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")

	return strings.TrimSpace(clean)
}

// ExtractJSONObject returns the substring from the first '{' to the
// last '}', tolerating prose around the object. Empty string when no
// object is present.
func ExtractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}
