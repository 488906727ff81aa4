package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var (
	cjkGap     = regexp.MustCompile(`([\x{4e00}-\x{9fa5}])\s+([\x{4e00}-\x{9fa5}])`)
	whitespace = regexp.MustCompile(`\s+`)
	noise      = strings.NewReplacer("|", "", "_", "", "~", "", "`", "", `"`, "", "'", "")
)

// Clean normalises raw tesseract output for short UI labels: trim, join CJK
// characters split by whitespace, drop all remaining whitespace, then remove
// the characters | _ ~ ` " '. Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	// ReplaceAll does not revisit the second character of a match, so a run
	// like "登 录 其" needs repeated passes.
	for {
		next := cjkGap.ReplaceAllString(text, "$1$2")
		if next == text {
			break
		}
		text = next
	}
	text = whitespace.ReplaceAllString(text, "")
	return noise.Replace(text)
}

// Fold maps full-width forms to their narrow equivalents and lower-cases the
// result, so "ＳＭＳ" and "sms" compare equal.
func Fold(s string) string {
	return strings.ToLower(width.Fold.String(s))
}
