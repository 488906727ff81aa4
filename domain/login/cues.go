package login

import (
	"strings"

	"github.com/soocke/login-bot-go/domain/layout"
	"github.com/soocke/login-bot-go/domain/ocr"
)

// Cue is a login form recognised from OCR text.
type Cue int

const (
	CueNone Cue = iota
	CueOtherAccount
	CueSMS
)

func (c Cue) String() string {
	switch c {
	case CueOtherAccount:
		return "other-account"
	case CueSMS:
		return "sms"
	default:
		return "none"
	}
}

// Partial variants tolerate OCR dropping leading or middle glyphs.
var (
	otherAccountKeywords = []string{"登录其他账号", "录其他账号", "其他账号", "登录其他", "其他"}
	smsKeywords          = []string{"手机短信", "机短信", "短信", "手机", "手短信"}
	clickEnterKeywords   = []string{"点击进入", "击进入", "进入"}
)

// Classify maps OCR text read from region to a cue. A region only yields its
// own cue.
func Classify(region layout.RegionID, text string) Cue {
	if text == "" {
		return CueNone
	}
	switch region {
	case layout.RegionOtherAccount:
		if containsAny(text, otherAccountKeywords) || strings.Contains(ocr.Fold(text), "login") {
			return CueOtherAccount
		}
	case layout.RegionSMS:
		if containsAny(text, smsKeywords) || strings.Contains(ocr.Fold(text), "sms") {
			return CueSMS
		}
	}
	return CueNone
}

// IsClickEnter reports whether text reads as the "click to enter" prompt.
func IsClickEnter(text string) bool {
	return text != "" && containsAny(text, clickEnterKeywords)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
