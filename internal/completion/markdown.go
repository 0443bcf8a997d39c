package completion

import (
	"regexp"
	"strings"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.+?)\*`)
)

// StripMarkdown は太字（**text**）と斜体（*text*）の記号を取り除き、前後の空白を削る。
// 太字を先に処理する。
func StripMarkdown(text string) string {
	text = boldPattern.ReplaceAllString(text, "${1}")
	text = italicPattern.ReplaceAllString(text, "${1}")
	return strings.TrimSpace(text)
}
