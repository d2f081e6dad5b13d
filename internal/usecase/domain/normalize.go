package domain

import "strings"

// lineNormalizer produces diff-ready text: LF line endings, no trailing
// whitespace per line.
type lineNormalizer struct{}

func (lineNormalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}
