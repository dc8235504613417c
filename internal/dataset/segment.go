package dataset

import "strings"

// SplitParagraphs breaks extracted document text into trimmed, non-empty
// paragraphs, one per line, preserving their order. Empty input yields an
// empty slice.
func SplitParagraphs(text string) []string {
	lines := strings.Split(text, "\n")

	paragraphs := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}
