package normalize

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {3,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reRulerLine  = regexp.MustCompile(`(?m)^\s*[_\-=*]{3,}\s*$`)
)

// Cleanup collapses noisy whitespace in OCR output. Conservative: keeps line
// breaks, collapses runs of blank lines, and drops separator rulers. Digits
// are left untouched since amounts and dates carry the signal downstream.
func Cleanup(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, "  ")
	s = reMultiSpace.ReplaceAllString(s, "  ")
	s = reRulerLine.ReplaceAllString(s, "")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Lines splits raw receipt text into trimmed, non-empty lines with the
// original relative order preserved. All-whitespace input yields an empty
// sequence; downstream extractors fall back to sentinels, never errors.
func Lines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
