package util

import (
	"strings"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"
)

// Oneline collapses every run of newlines, carriage returns and tabs into a
// single space and trims the result. Other bytes are kept as they are, valid
// UTF-8 or not.
func Oneline(s string) string {
	buf := make([]byte, 0, len(s))
	inRun := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' || c == '\r' || c == '\t' {
			if !inRun {
				buf = append(buf, ' ')
				inRun = true
			}

			continue
		}

		inRun = false

		buf = append(buf, c)
	}

	return strings.TrimSpace(string(buf))
}

// Truncate cuts s to at most limit bytes, marking the cut. The cut never
// splits a UTF-8 sequence. limit <= 0 disables it.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut] + "...(truncated)"
}

// Shellsplit splits s into words using shell quoting rules.
func Shellsplit(s string) ([]string, error) {
	return shellquote.Split(s) //nolint:wrapcheck
}

// Shelljoin quotes words so that [Shellsplit] returns them unchanged.
func Shelljoin(words []string) string {
	return shellquote.Join(words...)
}
