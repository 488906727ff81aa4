package login

import (
	"testing"
	"time"

	"github.com/soocke/login-bot-go/domain/coords"
	"github.com/soocke/login-bot-go/domain/layout"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		region layout.RegionID
		text   string
		want   Cue
	}{
		{layout.RegionOtherAccount, "登录其他账号", CueOtherAccount},
		{layout.RegionOtherAccount, "录其他账", CueOtherAccount},
		{layout.RegionOtherAccount, "其他", CueOtherAccount},
		{layout.RegionOtherAccount, "LOGIN", CueOtherAccount},
		{layout.RegionOtherAccount, "ｌｏｇｉｎ", CueOtherAccount},
		{layout.RegionOtherAccount, "短信", CueNone},
		{layout.RegionSMS, "手短信", CueSMS},
		{layout.RegionSMS, "机短", CueNone},
		{layout.RegionSMS, "手机", CueSMS},
		{layout.RegionSMS, "ＳＭＳ", CueSMS},
		{layout.RegionSMS, "其他账号", CueNone},
		{layout.RegionSMS, "", CueNone},
		{layout.RegionClickEnter, "点击进入", CueNone},
	}
	for _, c := range cases {
		if got := Classify(c.region, c.text); got != c.want {
			t.Errorf("Classify(%s, %q) = %s, want %s", c.region, c.text, got, c.want)
		}
	}
}

func TestIsClickEnter(t *testing.T) {
	for _, s := range []string{"点击进入", "击进入", "进入游戏", "请点击进入"} {
		if !IsClickEnter(s) {
			t.Errorf("expected %q to match", s)
		}
	}
	for _, s := range []string{"", "点击", "enter"} {
		if IsClickEnter(s) {
			t.Errorf("expected %q not to match", s)
		}
	}
}

func TestCredentials(t *testing.T) {
	c := Credentials{Username: "alice", Password: "pw"}
	if !c.Complete() {
		t.Fatalf("expected complete credentials")
	}
	if got := c.MaskedUsername(); got != "al***" {
		t.Fatalf("masked username: %q", got)
	}
	if (Credentials{Username: "ab"}).MaskedUsername() != "***" {
		t.Fatalf("short usernames must be fully masked")
	}
	if (Credentials{Username: "bob"}).Complete() {
		t.Fatalf("missing password must be incomplete")
	}
}

type countingFocus struct {
	foreground bool
	inside     bool
	pointer    int
}

func (f *countingFocus) IsForeground(uintptr) bool { return f.foreground }

func (f *countingFocus) IsPointerInside(coords.WindowMetrics) bool {
	f.pointer++
	return f.inside
}

func TestFocusGate_RateLimitsPointerCheck(t *testing.T) {
	now := time.Unix(0, 0)
	focus := &countingFocus{foreground: true, inside: true}
	g := newFocusGate(focus, 200*time.Millisecond, func() time.Time { return now }, discardLogger)
	m := coords.WindowMetrics{Width: 10, Height: 10, Handle: 1}

	if g.check(m) {
		t.Fatalf("focused window with pointer inside must not pause")
	}
	for i := 0; i < 5; i++ {
		now = now.Add(30 * time.Millisecond)
		g.check(m)
	}
	if focus.pointer != 1 {
		t.Fatalf("pointer checked %d times within the interval", focus.pointer)
	}
	now = now.Add(60 * time.Millisecond)
	g.check(m)
	if focus.pointer != 2 {
		t.Fatalf("expected a second pointer check after the interval, got %d", focus.pointer)
	}

	focus.foreground = false
	if !g.check(m) {
		t.Fatalf("unfocused window must pause")
	}
	focus.foreground = true
	focus.inside = false
	now = now.Add(time.Second)
	if !g.check(m) {
		t.Fatalf("pointer outside must pause")
	}
}
